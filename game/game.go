// Package game contains communication structures for the game controller, lobby, and socket to use.
package game

import (
	"fmt"
	"time"

	"github.com/polyfall-game/polyfall/game/board"
)

type (
	// ID is the id of a game.
	ID int

	// Config describes the rules of a game.
	Config struct {
		// Board is the size of the board each player fills.
		Board board.Config `json:"board"`
		// TilesPerPlayer is the number of tiles each player gets for the round.
		TilesPerPlayer int `json:"tilesPerPlayer,omitempty"`
		// Category is the shape pool category tiles are drawn from.
		Category string `json:"category,omitempty"`
		// RoundDuration is how long the round lasts after it is started.
		// If zero, the round only ends when a player fills their board.
		RoundDuration time.Duration `json:"roundDuration,omitempty"`
		// ClearCompletedRows is a flag to clear filled rows instead of playing for a full board.
		ClearCompletedRows bool `json:"clearCompletedRows,omitempty"`
	}
)

// Rules gets the rules for the game.  Extra rules are added for customized configurations.
func (cfg Config) Rules() []string {
	rules := []string{
		"Create or join a game from the lobby after refreshing the games list.",
		"Any player can join a game that is not started; active games can only be rejoined by players who started in them.",
		"After all players have joined the game, click the Start button to start the round.",
		"Every player gets the same tiles and an empty board.",
		"Move a tile with the arrow keys; rotate and mirror it while it floats free.",
		"Attach a tile to lock it onto your board.  Attached tiles cannot be transformed, so place them carefully.",
		"The first player to cover every box of their board wins the round.",
	}
	if cfg.TilesPerPlayer > 0 {
		rules = append(rules, fmt.Sprintf("Each player gets %d tiles this round.", cfg.TilesPerPlayer))
	}
	if cfg.ClearCompletedRows {
		rules = append(rules, "Completely covered rows are cleared, freeing the boxes for more tiles.")
	}
	if cfg.RoundDuration > 0 {
		rules = append(rules, fmt.Sprintf("The round ends after %v; whoever has covered the most boxes wins.", cfg.RoundDuration))
	}
	return rules
}
