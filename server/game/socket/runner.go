package socket

import (
	"context"
	"fmt"
	"net/http"

	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/message"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Runner handles sending messages to different sockets.
	// Players can open multiple sockets, but each game can only be played on one socket per player.
	Runner struct {
		upgrader      Upgrader
		playerSockets map[player.Name]map[message.Addr]chan<- message.Message
		playerGames   map[player.Name]map[game.ID]message.Addr
		socketOut     chan message.Message
		RunnerConfig
	}

	// RunnerConfig is used to create a socket Runner.
	RunnerConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// The maximum number of sockets.
		MaxSockets int
		// The maximum number of sockets each player can open.  Must be no more than MaxSockets.
		MaxPlayerSockets int
		// The config for creating new sockets.
		SocketConfig Config
	}

	// Upgrader turns a http request into a websocket.
	Upgrader interface {
		// Upgrade creates a Conn from the HTTP request.
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}
)

// NewRunner creates a new socket runner from the config.
func (cfg RunnerConfig) NewRunner() (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating socket runner: validation: %w", err)
	}
	u := newGorillaUpgrader()
	r := Runner{
		upgrader:      u,
		playerSockets: make(map[player.Name]map[message.Addr]chan<- message.Message, cfg.MaxSockets),
		playerGames:   make(map[player.Name]map[game.ID]message.Addr),
		RunnerConfig:  cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg RunnerConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxPlayerSockets < 1:
		return fmt.Errorf("each player must be able to open at least one socket")
	case cfg.MaxSockets < cfg.MaxPlayerSockets:
		return fmt.Errorf("players cannot create more sockets than the runner allows")
	}
	return nil
}

// Run consumes messages from the "in" channel and socket add requests from the "requests" channel.
// The messages received from sockets are sent on the returned channel to be read by the game runner.
func (r *Runner) Run(ctx context.Context, in <-chan message.Message, requests <-chan message.Socket) <-chan message.Message {
	r.socketOut = make(chan message.Message)
	out := make(chan message.Message)
	go func() {
		defer close(out)
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				r.handleLobbyMessage(ctx, m, out)
			case req := <-requests:
				r.addSocket(ctx, req)
			case m := <-r.socketOut:
				r.handleSocketMessage(ctx, m, out)
			}
		}
	}()
	return out
}

// addSocket adds a socket for the request and reports the result on the request's result channel.
func (r *Runner) addSocket(ctx context.Context, req message.Socket) {
	if req.Result == nil {
		r.Log.Printf("no result channel on socket request for %v", req.PlayerName)
		return
	}
	s, err := r.handleAddSocket(ctx, req.PlayerName, req.ResponseWriter, req.Request)
	m := message.Message{
		PlayerName: req.PlayerName,
	}
	switch {
	case err != nil:
		m.Type = message.SocketError
		m.Info = err.Error()
	default:
		m.Type = message.SocketAdd
		m.Addr = s.addr()
	}
	req.Result <- m
}

// handleAddSocket runs and adds a socket for the player to the runner.
func (r *Runner) handleAddSocket(ctx context.Context, pn player.Name, w http.ResponseWriter, req *http.Request) (*Socket, error) {
	if r.numSockets() >= r.MaxSockets {
		return nil, fmt.Errorf("no room for another socket")
	}
	if len(pn) == 0 {
		return nil, fmt.Errorf("player name required")
	}
	if len(r.playerSockets[pn]) >= r.MaxPlayerSockets {
		return nil, fmt.Errorf("player has reached quota of sockets, close an existing one")
	}
	conn, err := r.upgrader.Upgrade(w, req)
	if err != nil {
		return nil, fmt.Errorf("upgrading to websocket connection: %w", err)
	}
	s, err := r.SocketConfig.NewSocket(pn, conn)
	if err != nil {
		return nil, fmt.Errorf("creating socket in runner: %v", err)
	}
	if r.hasSocket(s.addr()) {
		return nil, fmt.Errorf("socket already exists with address of %v", s.addr())
	}
	socketIn := make(chan message.Message)
	s.Run(ctx, socketIn, r.socketOut)
	playerSockets, ok := r.playerSockets[pn]
	switch {
	case ok:
		playerSockets[s.addr()] = socketIn
	default:
		r.playerSockets[pn] = map[message.Addr]chan<- message.Message{
			s.addr(): socketIn,
		}
	}
	return s, nil
}

// numSockets sums the number of sockets for each player.  Not thread safe.
func (r *Runner) numSockets() int {
	numSockets := 0
	for _, sockets := range r.playerSockets {
		numSockets += len(sockets)
	}
	return numSockets
}

// hasSocket determines if a socket exists in the runner with the same address.  Not thread safe.
func (r *Runner) hasSocket(a message.Addr) bool {
	for _, sockets := range r.playerSockets {
		for a0 := range sockets {
			if a0 == a {
				return true
			}
		}
	}
	return false
}

// handleLobbyMessage writes the message to the appropriate sockets in the runner.
func (r *Runner) handleLobbyMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	switch m.Type {
	case message.GameInfos:
		r.sendGameInfos(ctx, m)
	case message.SocketError, message.SocketWarning:
		r.sendSocketError(ctx, m)
	case message.PlayerRemove:
		r.deletePlayer(ctx, m, out)
	default:
		r.sendMessageForGame(ctx, m)
	}
}

// handleSocketMessage writes the socket message to the out channel, possibly taking action.
func (r *Runner) handleSocketMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	if m.Type == message.SocketClose {
		r.removeSocket(ctx, m)
		return
	}
	if len(m.PlayerName) == 0 || len(m.Addr) == 0 {
		r.Log.Printf("received message without player name and address: %v", m)
		return
	}
	socketAddrs, ok := r.playerSockets[m.PlayerName]
	if !ok {
		r.Log.Printf("received message from socket of unknown player (%v)", m.PlayerName)
		return
	}
	if _, ok := socketAddrs[m.Addr]; !ok {
		r.Log.Printf("received message from %v from unknown address %v", m.PlayerName, m.Addr)
		return
	}
	if m.Game == nil {
		r.Log.Printf("received message without game: %v", m)
		return
	}
	switch m.Type {
	case message.CreateGame, message.JoinGame:
		// the socket is not yet in the game
	default:
		games, ok := r.playerGames[m.PlayerName]
		if !ok {
			r.Log.Printf("player %v at %v not playing any game", m.PlayerName, m.Addr)
			return
		}
		addr, ok := games[m.Game.ID]
		if !ok {
			r.Log.Printf("player %v at %v not in game %v", m.PlayerName, m.Addr, m.Game.ID)
			return
		}
		if addr != m.Addr {
			r.Log.Printf("player %v at %v playing game %v on a different socket (%v)", m.PlayerName, m.Addr, m.Game.ID, addr)
			return
		}
	}
	switch m.Type {
	case message.CreateGame:
		// the game runner responds with a join message for the new game's id
		out <- m
	case message.JoinGame:
		r.joinGame(ctx, m, out)
	case message.LeaveGame:
		r.leaveGame(ctx, m)
	default:
		out <- m
	}
}

// sendGameInfos sends the message with game infos to the single socket or all.
// When a socket is added, only it immediately needs game infos.  Otherwise, when any game info changes, all sockets must be notified.
func (r *Runner) sendGameInfos(ctx context.Context, m message.Message) {
	switch {
	case len(m.Addr) != 0:
		addrs, ok := r.playerSockets[m.PlayerName]
		if !ok {
			r.Log.Printf("no player to send infos to for %v", m)
			return
		}
		socketIn, ok := addrs[m.Addr]
		if !ok {
			r.Log.Printf("no socket for %v at %v", m.PlayerName, m.Addr)
			return
		}
		socketIn <- m
	default:
		for _, addrs := range r.playerSockets {
			for _, socketIn := range addrs {
				socketIn <- m
			}
		}
	}
}

// sendSocketError sends the game socket message to a specific socket if possible, otherwise to all sockets for the player.
func (r *Runner) sendSocketError(ctx context.Context, m message.Message) {
	switch {
	case m.Game != nil && m.Game.ID != 0:
		r.sendMessageForGame(ctx, m)
	default:
		socketAddrs := r.playerSockets[m.PlayerName]
		for _, socketIn := range socketAddrs {
			socketIn <- m
		}
	}
}

// sendMessageForGame sends the game message to the player's socket that is in the game, if possible.
func (r *Runner) sendMessageForGame(ctx context.Context, m message.Message) {
	if m.Game == nil {
		r.Log.Printf("no game to send game message for in %v", m)
		return
	}
	switch m.Type {
	case message.LeaveGame:
		defer r.leaveGame(ctx, m)
	case message.JoinGame:
		r.trackGame(m)
	}
	games, ok := r.playerGames[m.PlayerName]
	if !ok {
		return
	}
	addr, ok := games[m.Game.ID]
	if !ok {
		return
	}
	socketAddrs, ok := r.playerSockets[m.PlayerName]
	if !ok {
		r.Log.Printf("could not send message to %v, socket addrs not found - message: (%v)", m.PlayerName, m)
		return
	}
	socketIn, ok := socketAddrs[addr]
	if !ok {
		r.Log.Printf("could not send message to %v at %v - message: (%v)", m.PlayerName, addr, m)
		return
	}
	socketIn <- m
}

// trackGame records that the player's socket at the message's address is playing the game.
// Join messages from the game runner are stamped with the new game's id, so creating a game lands here.
func (r *Runner) trackGame(m message.Message) {
	if len(m.Addr) == 0 || m.Game == nil {
		return
	}
	games, ok := r.playerGames[m.PlayerName]
	if !ok {
		games = make(map[game.ID]message.Addr, 1)
		r.playerGames[m.PlayerName] = games
	}
	games[m.Game.ID] = m.Addr
}

// joinGame adds the socket to the game.
// If the socket is in a different game, that game is left.
// If a different socket is in the game for the player, that socket leaves the game.
func (r *Runner) joinGame(ctx context.Context, m message.Message, out chan<- message.Message) {
	games, ok := r.playerGames[m.PlayerName]
	switch {
	case !ok:
		games = make(map[game.ID]message.Addr, 1)
		r.playerGames[m.PlayerName] = games
	default:
		addr2, ok := games[m.Game.ID]
		if ok {
			if m.Addr == addr2 {
				break // refresh the game on the same socket
			}
			m2 := message.Message{
				Type: message.LeaveGame,
				Info: "leaving game because it is being played on a different socket",
			}
			socketIn := r.playerSockets[m.PlayerName][addr2]
			socketIn <- m2
		}
		// remove the addr from its previously joined game if it is different
		for id, addr := range games {
			if addr == m.Addr {
				delete(games, id)
				break
			}
		}
	}
	games[m.Game.ID] = m.Addr
	out <- m
}

// leaveGame removes the socket from the game it is in.
func (r *Runner) leaveGame(ctx context.Context, m message.Message) {
	if m.Game == nil {
		return
	}
	delete(r.playerGames[m.PlayerName], m.Game.ID)
	if len(r.playerGames[m.PlayerName]) == 0 {
		delete(r.playerGames, m.PlayerName)
	}
}

// removeSocket removes a closed socket from the runner.
// The player stays in their games so they can rejoin from a new socket.
func (r *Runner) removeSocket(ctx context.Context, m message.Message) {
	socketIn, ok := r.playerSockets[m.PlayerName][m.Addr]
	if !ok {
		return
	}
	close(socketIn)
	delete(r.playerSockets[m.PlayerName], m.Addr)
	if len(r.playerSockets[m.PlayerName]) == 0 {
		delete(r.playerSockets, m.PlayerName)
	}
}

// deletePlayer removes the player's sockets and games, telling the game runner to remove the player from their games.
func (r *Runner) deletePlayer(ctx context.Context, m message.Message, out chan<- message.Message) {
	for id := range r.playerGames[m.PlayerName] {
		m2 := message.Message{
			Type:       message.PlayerRemove,
			PlayerName: m.PlayerName,
			Game:       &game.Info{ID: id},
		}
		out <- m2
	}
	delete(r.playerGames, m.PlayerName)
	addrs := r.playerSockets[m.PlayerName]
	delete(r.playerSockets, m.PlayerName)
	for _, socketIn := range addrs {
		close(socketIn)
	}
}
