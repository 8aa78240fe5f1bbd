// Package game controls the logic to run the game.
package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/board"
	"github.com/polyfall-game/polyfall/game/message"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/game/pool"
	"github.com/polyfall-game/polyfall/game/tile"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Game contains the logic to run a tile-placement round between users.
	Game struct {
		id        game.ID
		createdAt int64
		status    game.Status
		players   map[player.Name]*player.Player
		winner    player.Name
		// dealIDs are the structure ids every player's tiles are created from.
		dealIDs []int
		UserDao
		Config
	}

	// Config contains the properties to create similar games.
	Config struct {
		// Debug is a flag that causes the game to log the types of messages that are read.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// Used for the created at timestamp.
		TimeFunc func() int64
		// MaxPlayers is the maximum number of players that can be part of the game.
		MaxPlayers int
		// PlayerCfg is used to create new players.
		PlayerCfg player.Config
		// Pool supplies the shapes tiles are created from.
		Pool *pool.Pool
		// IdlePeriod is the amount of time that can pass between messages before the game is idle and will delete itself.
		IdlePeriod time.Duration
		// ShuffleStructureIDsFunc is used to shuffle the structure ids when choosing the tiles for the round.
		ShuffleStructureIDsFunc func(ids []int)
		// Config is the nested configuration for the specific game.
		game.Config
	}

	// messageHandler is a function which handles message.Messages, returning responses to the output channel.
	messageHandler func(ctx context.Context, m message.Message, send messageSender) error

	// UserDao makes changes to the stored state of users in the game.
	UserDao interface {
		// UpdatePointsIncrement increments points for the specified usernames.
		UpdatePointsIncrement(ctx context.Context, userPoints map[string]int) error
	}

	// messageSender is a function that sends a message somewhere.
	messageSender func(m message.Message)
)

// gameWarningNotInProgress is a shared warning to alert users of an invalid game state.
const gameWarningNotInProgress gameWarning = "game has not started or is finished"

// NewGame creates a new game, selecting the tiles every player will receive.
func (cfg Config) NewGame(id game.ID, ud UserDao) (*Game, error) {
	if err := cfg.validate(id, ud); err != nil {
		return nil, fmt.Errorf("creating game: validation: %w", err)
	}
	g := Game{
		id:        id,
		createdAt: cfg.TimeFunc(),
		status:    game.NotStarted,
		players:   make(map[player.Name]*player.Player),
		UserDao:   ud,
		Config:    cfg,
	}
	if err := g.dealStructureIDs(); err != nil {
		return nil, err
	}
	return &g, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(id game.ID, ud UserDao) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case id <= 0:
		return fmt.Errorf("positive id required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case ud == nil:
		return fmt.Errorf("user dao required")
	case cfg.MaxPlayers <= 0:
		return fmt.Errorf("positive max player count required")
	case cfg.Pool == nil:
		return fmt.Errorf("shape pool required")
	case cfg.TilesPerPlayer <= 0:
		return fmt.Errorf("positive number of player starting tile count required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.ShuffleStructureIDsFunc == nil:
		return fmt.Errorf("function to shuffle structure ids required")
	case cfg.RoundDuration < 0:
		return fmt.Errorf("nonnegative round duration required")
	}
	return nil
}

// dealStructureIDs chooses the structure ids for the round from the pool category and shuffles them.
// Every player gets a tile for each chosen id.
func (g *Game) dealStructureIDs() error {
	structures := g.Pool.Structures(g.Category)
	if len(structures) < g.TilesPerPlayer {
		return fmt.Errorf("category %q has %v structures, wanted at least %v", g.Category, len(structures), g.TilesPerPlayer)
	}
	ids := make([]int, len(structures))
	for i, s := range structures {
		ids[i] = s.ID
	}
	g.ShuffleStructureIDsFunc(ids)
	g.dealIDs = ids[:g.TilesPerPlayer]
	return nil
}

// Run runs the game asynchronously until the context is closed.
func (g *Game) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) {
	idleTicker := time.NewTicker(g.IdlePeriod)
	active := false
	messageSender := g.sendMessage(out)
	messageHandlers := map[message.Type]messageHandler{
		message.JoinGame:               g.handleGameJoin,
		message.DeleteGame:             g.handleGameDelete,
		message.ChangeGameStatus:       g.handleGameStatusChange,
		message.PlaceTile:              g.handleTilePlace,
		message.MoveTileUp:             g.handleTileMove,
		message.MoveTileDown:           g.handleTileMove,
		message.MoveTileLeft:           g.handleTileMove,
		message.MoveTileRight:          g.handleTileMove,
		message.RotateTileRight:        g.handleTileTransform,
		message.RotateTileLeft:         g.handleTileTransform,
		message.MirrorTileVertically:   g.handleTileTransform,
		message.MirrorTileHorizontally: g.handleTileTransform,
		message.AttachTile:             g.handleTileAttach,
		message.GameChat:               g.handleGameChat,
		message.RefreshGameBoard:       g.handleBoardRefresh,
		message.PlayerRemove:           g.handlePlayerRemove,
	}
	go func() {
		defer idleTicker.Stop()
		var roundTimer *time.Timer
		var roundC <-chan time.Time
		defer func() {
			if roundTimer != nil {
				roundTimer.Stop()
			}
		}()
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				g.handleMessage(ctx, m, messageSender, &active, messageHandlers)
				if m.Type == message.DeleteGame {
					return
				}
				if roundTimer == nil && g.status == game.InProgress && g.RoundDuration > 0 {
					roundTimer = time.NewTimer(g.RoundDuration)
					roundC = roundTimer.C
				}
			case <-roundC:
				roundC = nil
				g.handleRoundEnd(ctx, messageSender)
			case <-idleTicker.C:
				var m message.Message
				if !active {
					g.Log.Printf("deleted game %v due to inactivity", g.id)
					g.handleGameDelete(ctx, m, messageSender)
					return
				}
				active = false
			}
		}
	}()
}

// sendMessage creates a messageSender that adds the game id to the message before sending it on the out channel.
func (g *Game) sendMessage(out chan<- message.Message) messageSender {
	return func(m message.Message) {
		if m.Game == nil {
			var i game.Info
			m.Game = &i
		}
		m.Game.ID = g.id
		out <- m
	}
}

// handleMessage handles the message with the appropriate message handler.
func (g *Game) handleMessage(ctx context.Context, m message.Message, send messageSender, active *bool, messageHandlers map[message.Type]messageHandler) {
	if g.Debug {
		g.Log.Printf("game reading message with type %v", m.Type)
	}
	var err error
	if mh, ok := messageHandlers[m.Type]; !ok {
		err = fmt.Errorf("game does not know how to handle MessageType %v", m.Type)
	} else if _, ok := g.players[m.PlayerName]; !ok && m.Type != message.JoinGame {
		err = fmt.Errorf("game does not have player named '%v'", m.PlayerName)
	} else {
		err = mh(ctx, m, send)
		*active = true
	}
	if err != nil {
		var mt message.Type
		switch err.(type) {
		case gameWarning:
			mt = message.SocketWarning
		default:
			mt = message.SocketError
			g.Log.Printf("game error: %v", err)
		}
		m := message.Message{
			Type:       mt,
			PlayerName: m.PlayerName,
			Info:       err.Error(),
		}
		send(m)
	}
}

// handleGameJoin adds the player from the message to the game.
func (g *Game) handleGameJoin(ctx context.Context, m message.Message, send messageSender) error {
	_, ok := g.players[m.PlayerName]
	var err error
	switch {
	case ok:
		err = g.handleBoardRefresh(ctx, m, send)
	case g.status != game.NotStarted:
		err = gameWarning("cannot join game that has been started")
	case len(g.players) >= g.MaxPlayers:
		err = gameWarning("no room for another player in game")
	default:
		err = g.handleAddPlayer(ctx, m, send)
	}
	if err != nil {
		// kick the player here, returning an error will not remove them from the game
		m := message.Message{
			Type:       message.LeaveGame,
			PlayerName: m.PlayerName,
		}
		send(m)
		return err
	}
	return nil
}

// handleAddPlayer adds the player to the game, giving them an empty board and the round's tiles.
func (g *Game) handleAddPlayer(ctx context.Context, m message.Message, send messageSender) error {
	b, err := g.Config.Board.New()
	if err != nil {
		return fmt.Errorf("creating board: %w", err)
	}
	tiles, err := g.newTiles()
	if err != nil {
		return fmt.Errorf("creating tiles: %w", err)
	}
	p, err := g.PlayerCfg.New(b, tiles)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	g.players[m.PlayerName] = p
	m2 := g.boardMessage(m)
	m2.Info = "joining game"
	send(*m2)
	for n := range g.players {
		if n != m.PlayerName {
			m := message.Message{
				Type:       message.GameChat,
				PlayerName: n,
				Info:       fmt.Sprintf("%v joined the game", m.PlayerName),
			}
			send(m)
		}
	}
	g.handleInfoChanged(send)
	return nil
}

// newTiles creates the round's tiles from the dealt structure ids, keyed by id.
func (g *Game) newTiles() (map[int]*tile.Tile, error) {
	tiles := make(map[int]*tile.Tile, len(g.dealIDs))
	for _, id := range g.dealIDs {
		t, err := g.Pool.NewTile(id, g.Category)
		if err != nil {
			return nil, err
		}
		t.SetLog(g.Log)
		tiles[id] = t
	}
	return tiles, nil
}

// handleGameDelete sends game leave messages to all players in the game.
func (g *Game) handleGameDelete(ctx context.Context, m message.Message, send messageSender) error {
	for n := range g.players {
		m := message.Message{
			Type:       message.LeaveGame,
			PlayerName: n,
			Info:       "game deleted",
		}
		send(m)
	}
	g.status = game.Deleted
	g.handleInfoChanged(send)
	return nil
}

// handleGameStatusChange changes the status of the game.
// The game is finished by attaching tiles, not by a status change request.
func (g *Game) handleGameStatusChange(ctx context.Context, m message.Message, send messageSender) error {
	switch g.status {
	case game.NotStarted:
		if err := g.handleGameStart(ctx, m, send); err != nil {
			return err
		}
	case game.InProgress:
		return gameWarning("the game finishes when a player covers every box of their board")
	default:
		return fmt.Errorf("cannot change game state from %v", g.status)
	}
	g.handleInfoChanged(send)
	return nil
}

// handleGameStart starts the game.
func (g *Game) handleGameStart(ctx context.Context, m message.Message, send messageSender) error {
	if m.Game == nil || m.Game.Status != game.InProgress {
		return gameWarning("can only set game status to started")
	}
	g.status = game.InProgress
	info := fmt.Sprintf("%v started the game", m.PlayerName)
	for n := range g.players {
		m := message.Message{
			Type:       message.ChangeGameStatus,
			PlayerName: n,
			Info:       info,
			Game: &game.Info{
				Status: g.status,
			},
		}
		send(m)
	}
	return nil
}

// handleTilePlace positions one of the player's tiles at the hook in the message.
func (g *Game) handleTilePlace(ctx context.Context, m message.Message, send messageSender) error {
	t, p, err := g.playerTile(m)
	if err != nil {
		return err
	}
	if m.Hook == nil {
		return gameWarning("hook required to place tile")
	}
	if !t.PlaceOnGrid(p.Board, *m.Hook) {
		return gameWarning(fmt.Sprintf("tile cannot be placed at %v,%v", m.Hook.X, m.Hook.Y))
	}
	return nil
}

// handleTileMove shifts one of the player's placed tiles a single box.
func (g *Game) handleTileMove(ctx context.Context, m message.Message, send messageSender) error {
	t, _, err := g.playerTile(m)
	if err != nil {
		return err
	}
	var ok bool
	switch m.Type {
	case message.MoveTileUp:
		ok = t.MoveUp()
	case message.MoveTileDown:
		ok = t.MoveDown()
	case message.MoveTileLeft:
		ok = t.MoveLeft()
	default:
		ok = t.MoveRight()
	}
	if !ok {
		return gameWarning("tile cannot move there")
	}
	return nil
}

// handleTileTransform rotates or mirrors one of the player's tiles.
func (g *Game) handleTileTransform(ctx context.Context, m message.Message, send messageSender) error {
	t, _, err := g.playerTile(m)
	if err != nil {
		return err
	}
	switch m.Type {
	case message.RotateTileRight:
		t.RotateRight()
	case message.RotateTileLeft:
		t.RotateLeft()
	case message.MirrorTileVertically:
		t.MirrorVertically()
	default:
		t.MirrorHorizontally()
	}
	return nil
}

// handleTileAttach locks one of the player's tiles onto their board at its current hook.
// If the attached tile covers the last open box, the player wins and the game is finished.
func (g *Game) handleTileAttach(ctx context.Context, m message.Message, send messageSender) error {
	t, p, err := g.playerTile(m)
	if err != nil {
		return err
	}
	hook, ok := t.Hook()
	if !ok {
		return gameWarning("place the tile before attaching it")
	}
	if !t.CheckPlaceable(hook) {
		p.DecrementWinPoints()
		return gameWarning("tile does not fit there, possible win points decremented")
	}
	t.AttachToGrid(p.Board, hook)
	if g.ClearCompletedRows {
		if rows := p.Board.CompletedRows(); len(rows) > 0 {
			cleared := p.Board.ClearRows(rows...)
			m2 := message.Message{
				Type:       message.GameChat,
				PlayerName: m.PlayerName,
				Info:       fmt.Sprintf("%v boxes cleared from completed rows", cleared),
			}
			send(m2)
		}
	}
	if p.Board.Filled() && p.AllAttached() {
		return g.handleGameFinish(ctx, m, send)
	}
	return nil
}

// handleGameFinish finishes the game for the player that covered their board.
func (g *Game) handleGameFinish(ctx context.Context, m message.Message, send messageSender) error {
	p := g.players[m.PlayerName]
	g.status = game.Finished
	g.winner = m.PlayerName
	info := fmt.Sprintf(
		"WINNER! - %v covered every box of their board, getting %v points.  Other players each get 1 point.",
		m.PlayerName,
		p.WinPoints,
	)
	if err := g.updateUserPoints(ctx, m.PlayerName); err != nil {
		info = err.Error()
	}
	finalBoards := g.playerFinalBoards()
	for n := range g.players {
		m := message.Message{
			Type:       message.ChangeGameStatus,
			PlayerName: n,
			Info:       info,
			Game: &game.Info{
				Status:      game.Finished,
				Winner:      string(g.winner),
				FinalBoards: finalBoards,
			},
		}
		send(m)
	}
	g.handleInfoChanged(send)
	return nil
}

// handleRoundEnd finishes the game when the round duration expires.
// The player with the most covered boxes wins.  Ties go to the player whose name sorts first.
func (g *Game) handleRoundEnd(ctx context.Context, send messageSender) {
	if g.status != game.InProgress {
		return
	}
	g.status = game.Finished
	winner, covered, ok := g.mostCoveredPlayer()
	if !ok {
		g.handleInfoChanged(send)
		return
	}
	p := g.players[winner]
	g.winner = winner
	info := fmt.Sprintf(
		"TIME! - %v covered the most boxes (%v), getting %v points.  Other players each get 1 point.",
		winner,
		covered,
		p.WinPoints,
	)
	if err := g.updateUserPoints(ctx, winner); err != nil {
		info = err.Error()
	}
	finalBoards := g.playerFinalBoards()
	for n := range g.players {
		m := message.Message{
			Type:       message.ChangeGameStatus,
			PlayerName: n,
			Info:       info,
			Game: &game.Info{
				Status:      game.Finished,
				Winner:      string(g.winner),
				FinalBoards: finalBoards,
			},
		}
		send(m)
	}
	g.handleInfoChanged(send)
}

// mostCoveredPlayer finds the player whose board has the most covered boxes.
func (g *Game) mostCoveredPlayer() (player.Name, int, bool) {
	var winner player.Name
	covered := -1
	for _, n := range g.playerNames() {
		p := g.players[player.Name(n)]
		if c := p.Board.CoveredBoxes(); c > covered {
			winner = player.Name(n)
			covered = c
		}
	}
	return winner, covered, covered >= 0
}

// handleBoardRefresh sends the player's board and tiles back to the player.
func (g *Game) handleBoardRefresh(ctx context.Context, m message.Message, send messageSender) error {
	m2 := g.boardMessage(m)
	send(*m2)
	return nil
}

// handleGameChat sends a chat message from a player to everyone in the game.
func (g *Game) handleGameChat(ctx context.Context, m message.Message, send messageSender) error {
	info := fmt.Sprintf("%v : %v", m.PlayerName, m.Info)
	for n := range g.players {
		m2 := message.Message{
			Type:       message.GameChat,
			PlayerName: n,
			Info:       info,
		}
		send(m2)
	}
	return nil
}

// handlePlayerRemove removes the player from the game after their sockets have disconnected.
func (g *Game) handlePlayerRemove(ctx context.Context, m message.Message, send messageSender) error {
	delete(g.players, m.PlayerName)
	g.handleInfoChanged(send)
	return nil
}

// playerTile looks up the player and tile a placement message targets.
// Tiles that are locked onto the board can no longer be changed.
func (g *Game) playerTile(m message.Message) (*tile.Tile, *player.Player, error) {
	if g.status != game.InProgress {
		return nil, nil, gameWarningNotInProgress
	}
	p := g.players[m.PlayerName]
	t, err := p.Tile(m.TileID)
	if err != nil {
		return nil, nil, gameWarning(err.Error())
	}
	if t.Attached() {
		return nil, nil, gameWarning("tile is locked to the board")
	}
	return t, p, nil
}

// updateUserPoints updates the points for users in the game after a player has won.
// The winning player gets their winPoints, which should be at least 2.  Other players in the game get a consolation point.
func (g *Game) updateUserPoints(ctx context.Context, winningPlayerName player.Name) error {
	userPoints := make(map[string]int, len(g.players))
	for pn, p := range g.players {
		points := 1
		if pn == winningPlayerName {
			points = p.WinPoints
		}
		userPoints[string(pn)] = points
	}
	return g.UserDao.UpdatePointsIncrement(ctx, userPoints)
}

// playerNames returns an array of the player name strings.
func (g Game) playerNames() []string {
	playerNames := make([]string, 0, len(g.players))
	for n := range g.players {
		playerNames = append(playerNames, string(n))
	}
	sort.Strings(playerNames)
	return playerNames
}

// handleInfoChanged sends the game's info in a message.
func (g Game) handleInfoChanged(send messageSender) {
	i := game.Info{
		ID:        g.id,
		Status:    g.status,
		Players:   g.playerNames(),
		Winner:    string(g.winner),
		CreatedAt: g.createdAt,
	}
	m := message.Message{
		Type: message.GameInfos,
		Game: &i,
	}
	send(m)
}

// boardMessage creates a message with the player's board, tiles, and the game's info.
func (g *Game) boardMessage(m message.Message) *message.Message {
	p := g.players[m.PlayerName]
	m2 := message.Message{
		Type:       message.JoinGame,
		PlayerName: m.PlayerName,
		Board:      p.Board,
		Tiles:      p.Tiles,
		Game: &game.Info{
			ID:        g.id,
			Status:    g.status,
			Players:   g.playerNames(),
			CreatedAt: g.createdAt,
			Config:    &g.Config.Config,
			Rules:     g.Config.Config.Rules(),
		},
		Addr: m.Addr,
	}
	if g.status == game.Finished {
		m2.Game.Winner = string(g.winner)
		m2.Game.FinalBoards = g.playerFinalBoards()
	}
	return &m2
}

// playerFinalBoards creates a map of player boards.
func (g Game) playerFinalBoards() map[string]*board.Board {
	finalBoards := make(map[string]*board.Board, len(g.players))
	for pn, p := range g.players {
		finalBoards[string(pn)] = p.Board
	}
	return finalBoards
}
