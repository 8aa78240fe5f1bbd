package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/message"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/server/log"
)

type (
	// Runner runs games.
	Runner struct {
		// games maps game ids to the channel each game listens to for incoming messages.
		// Out channels are not stored because all games publish to the same out channel.
		games map[game.ID]chan<- message.Message
		// lastID is the id of the most recently created game.  The next new game gets a larger id.
		lastID game.ID
		// the UserDao increments user points when a game is finished.
		UserDao
		// RunnerConfig contains configuration properties of the Runner.
		RunnerConfig
	}

	// RunnerConfig is used to create a game Runner.
	RunnerConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// The maximum number of games.
		MaxGames int
		// The config for creating new games.
		GameConfig Config
	}
)

// NewRunner creates a new game runner from the config.
func (cfg RunnerConfig) NewRunner(ud UserDao) (*Runner, error) {
	if err := cfg.validate(ud); err != nil {
		return nil, fmt.Errorf("creating game runner: validation: %w", err)
	}
	r := Runner{
		games:        make(map[game.ID]chan<- message.Message, cfg.MaxGames),
		UserDao:      ud,
		RunnerConfig: cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg RunnerConfig) validate(ud UserDao) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case ud == nil:
		return fmt.Errorf("user dao required")
	case cfg.MaxGames < 1:
		return fmt.Errorf("must be able to create at least one game")
	}
	return nil
}

// Run consumes messages from the "in" channel until it closes or the context is cancelled.
// The results of messages are sent on the returned channel to be read by the subscriber.
func (r *Runner) Run(ctx context.Context, in <-chan message.Message) <-chan message.Message {
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
				r.handleMessage(ctx, m, out)
			}
		}
	}()
	return out
}

// handleMessage takes appropriate actions for different message types.
func (r *Runner) handleMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	switch m.Type {
	case message.CreateGame:
		r.createGame(ctx, m, out)
	case message.DeleteGame:
		r.deleteGame(ctx, m, out)
	default:
		r.handleGameMessage(ctx, m, out)
	}
}

// createGame allocates a new game, adding it to the open games.
// The creating player joins the game.
func (r *Runner) createGame(ctx context.Context, m message.Message, out chan<- message.Message) {
	if len(r.games) >= r.MaxGames {
		err := fmt.Errorf("the maximum number of games have already been created (%v)", r.MaxGames)
		r.sendError(err, m.PlayerName, out)
		return
	}
	id := r.lastID + 1
	cfg := r.gameConfig(m)
	g, err := cfg.NewGame(id, r.UserDao)
	if err != nil {
		r.sendError(err, m.PlayerName, out)
		return
	}
	r.lastID = id
	in := make(chan message.Message)
	g.Run(ctx, in, out) // all games publish to the same "out" channel
	r.games[id] = in
	m.Type = message.JoinGame
	in <- m
}

// gameConfig copies the runner's game config, applying the custom rules from the message.
func (r *Runner) gameConfig(m message.Message) Config {
	cfg := r.GameConfig
	if m.Game != nil && m.Game.Config != nil {
		c := *m.Game.Config
		if c.Board.NumCols == 0 && c.Board.NumRows == 0 {
			c.Board = cfg.Config.Board
		}
		if c.TilesPerPlayer == 0 {
			c.TilesPerPlayer = cfg.Config.TilesPerPlayer
		}
		if len(c.Category) == 0 {
			c.Category = cfg.Config.Category
		}
		if c.RoundDuration == 0 {
			c.RoundDuration = cfg.Config.RoundDuration
		}
		cfg.Config = c
	}
	return cfg
}

// deleteGame removes a game from the runner, notifying the game that it is being deleted so it can notify users.
func (r *Runner) deleteGame(ctx context.Context, m message.Message, out chan<- message.Message) {
	gIn, err := r.getGame(m)
	if err != nil {
		r.sendError(err, m.PlayerName, out)
		return
	}
	delete(r.games, m.Game.ID)
	gIn <- m
}

// handleGameMessage passes the message to the game it is for.
func (r *Runner) handleGameMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	gIn, err := r.getGame(m)
	if err != nil {
		r.sendError(err, m.PlayerName, out)
		return
	}
	gIn <- m
}

// getGame retrieves the game from the runner for the message, if the runner has a game for the message's game id.
func (r *Runner) getGame(m message.Message) (chan<- message.Message, error) {
	if m.Game == nil {
		return nil, errors.New("no game for runner to handle in message")
	}
	gIn, ok := r.games[m.Game.ID]
	if !ok {
		return nil, errors.New("no game ID for runner to handle in message")
	}
	return gIn, nil
}

// sendError adds a message for the player on the channel.
func (r *Runner) sendError(err error, pn player.Name, out chan<- message.Message) {
	err = fmt.Errorf("player %v: %w", pn, err)
	r.Log.Printf("%v", err)
	m := message.Message{
		Type:       message.SocketError,
		Info:       err.Error(),
		PlayerName: pn,
	}
	out <- m
}
