package game

import "github.com/polyfall-game/polyfall/game/board"

// Info contains information about a game.
type Info struct {
	// ID is unique among the other games that currently exist.
	ID ID `json:"id,omitempty"`
	// Status is the state of the game.
	Status Status `json:"status,omitempty"`
	// Players is a list of the names of players in the game.
	Players []string `json:"players,omitempty"`
	// Winner is the name of the player that won, if the game is finished.
	Winner string `json:"winner,omitempty"`
	// CreatedAt is the game's creation time in seconds since the unix epoch.
	CreatedAt int64 `json:"createdAt,omitempty"`
	// Config is the specific options used to create the game.
	Config *Config `json:"config,omitempty"`
	// Rules describe how the game is played, adjusted for the config.
	Rules []string `json:"rules,omitempty"`
	// FinalBoards are the boards of every player when the game is finished.
	FinalBoards map[string]*board.Board `json:"finalBoards,omitempty"`
}

// CanJoin indicates whether or not a player can join the game.
// Players can only join games that are not started or that they were previously a part of.
func (i Info) CanJoin(playerName string) bool {
	if i.Status == NotStarted {
		return true
	}
	for _, n := range i.Players {
		if n == playerName {
			return true
		}
	}
	return false
}
