// Package lobby handles players connecting to games and communication between games and players.
package lobby

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/message"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Lobby is the place users can create, join, and participate in games.
	// It routes messages between the socket runner and the game runner and
	// caches the infos of the games so new sockets can be told about them.
	Lobby struct {
		socketRunner SocketRunner
		gameRunner   GameRunner
		addSockets   chan message.Socket
		socketAdded  chan message.Message
		socketIn     chan message.Message
		gameIn       chan message.Message
		games        map[game.ID]game.Info
		Config
	}

	// Config contains the properties to create a lobby.
	Config struct {
		// Debug is a flag that causes the lobby to log the types of messages that are read.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
	}

	// SocketRunner handles sockets for users of the lobby.
	SocketRunner interface {
		Run(ctx context.Context, in <-chan message.Message, requests <-chan message.Socket) <-chan message.Message
	}

	// GameRunner handles games for users of the lobby.
	GameRunner interface {
		Run(ctx context.Context, in <-chan message.Message) <-chan message.Message
	}
)

// NewLobby creates a new lobby for games and sockets.
func (cfg Config) NewLobby(socketRunner SocketRunner, gameRunner GameRunner) (*Lobby, error) {
	if err := cfg.validate(socketRunner, gameRunner); err != nil {
		return nil, fmt.Errorf("creating lobby: validation: %w", err)
	}
	l := Lobby{
		socketRunner: socketRunner,
		gameRunner:   gameRunner,
		addSockets:   make(chan message.Socket),
		socketAdded:  make(chan message.Message),
		socketIn:     make(chan message.Message),
		gameIn:       make(chan message.Message),
		games:        make(map[game.ID]game.Info),
		Config:       cfg,
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(socketRunner SocketRunner, gameRunner GameRunner) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case socketRunner == nil:
		return fmt.Errorf("socket runner required")
	case gameRunner == nil:
		return fmt.Errorf("game runner required")
	}
	return nil
}

// Run runs the lobby until the context is closed.
func (l *Lobby) Run(ctx context.Context, wg *sync.WaitGroup) {
	socketOut := l.socketRunner.Run(ctx, l.socketIn, l.addSockets)
	gameOut := l.gameRunner.Run(ctx, l.gameIn)
	wg.Add(1)
	go func() { // BLOCKING
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-l.socketAdded:
				l.handleSocketAdded(ctx, m)
			case m := <-socketOut:
				l.handleSocketMessage(ctx, m)
			case m := <-gameOut:
				l.handleGameMessage(ctx, m)
			}
		}
	}()
}

// AddUser adds a user to the lobby, opening a new socket for the username.
// It blocks until the socket runner handles the request.
func (l *Lobby) AddUser(username string, w http.ResponseWriter, r *http.Request) error {
	result := make(chan message.Message)
	s := message.Socket{
		Type:           message.SocketAdd,
		PlayerName:     player.Name(username),
		Result:         result,
		ResponseWriter: w,
		Request:        r,
	}
	l.addSockets <- s
	m := <-result
	if m.Type == message.SocketError {
		return fmt.Errorf("adding socket: %v", m.Info)
	}
	l.socketAdded <- m
	return nil
}

// RemoveUser removes all sockets for the user and removes the user from any games.
func (l *Lobby) RemoveUser(username string) {
	l.socketIn <- message.Message{
		Type:       message.PlayerRemove,
		PlayerName: player.Name(username),
	}
}

// handleSocketAdded sends the lobby's game infos to the new socket.
func (l *Lobby) handleSocketAdded(ctx context.Context, m message.Message) {
	infos := message.Message{
		Type:       message.GameInfos,
		Games:      l.gameInfos(),
		PlayerName: m.PlayerName,
		Addr:       m.Addr,
	}
	message.Send(infos, l.socketIn, l.Debug, l.Log)
}

// handleSocketMessage forwards the message from the socket runner to the game runner.
func (l *Lobby) handleSocketMessage(ctx context.Context, m message.Message) {
	if l.Debug {
		l.Log.Printf("lobby reading socket message with type %v", m.Type)
	}
	message.Send(m, l.gameIn, l.Debug, l.Log)
}

// handleGameMessage forwards the message from the game runner to the socket runner,
// merging game info changes into the lobby's cache.
func (l *Lobby) handleGameMessage(ctx context.Context, m message.Message) {
	if l.Debug {
		l.Log.Printf("lobby reading game message with type %v", m.Type)
	}
	if m.Type == message.GameInfos && m.Game != nil {
		l.handleGameInfoChanged(ctx, m)
		return
	}
	message.Send(m, l.socketIn, l.Debug, l.Log)
}

// handleGameInfoChanged updates the cached info for the game and notifies all sockets.
func (l *Lobby) handleGameInfoChanged(ctx context.Context, m message.Message) {
	i := *m.Game
	switch i.Status {
	case game.Deleted:
		delete(l.games, i.ID)
	default:
		l.games[i.ID] = i
	}
	infos := message.Message{
		Type:  message.GameInfos,
		Games: l.gameInfos(),
	}
	message.Send(infos, l.socketIn, l.Debug, l.Log)
}

// gameInfos gets the cached game infos, sorted by game id.
func (l *Lobby) gameInfos() []game.Info {
	infos := make([]game.Info, 0, len(l.games))
	for _, info := range l.games {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(a, b int) bool {
		return infos[a].ID < infos[b].ID
	})
	return infos
}
