// Package player controls the game state for each player.
package player

import (
	"fmt"

	"github.com/polyfall-game/polyfall/game/board"
	"github.com/polyfall-game/polyfall/game/tile"
)

type (
	// Name is the unique name of a player.
	Name string

	// Player stores the board and the round's tiles for each player in the game.
	Player struct {
		WinPoints int
		Board     *board.Board
		Tiles     map[int]*tile.Tile
	}

	// Config can be used to create new players.
	Config struct {
		// WinPoints are the amount of points a player gets if they win a game.
		// A player's win points are decremented each time they attempt to unsuccessfully finish a game.
		WinPoints int
	}
)

// New creates a player with the winPoints defined by config, a board to fill,
// and the tiles to fill it with, keyed by tile id.
func (cfg Config) New(b *board.Board, tiles map[int]*tile.Tile) (*Player, error) {
	if err := cfg.validate(b); err != nil {
		return nil, fmt.Errorf("creating player: validation: %w", err)
	}
	p := Player{
		WinPoints: cfg.WinPoints,
		Board:     b,
		Tiles:     tiles,
	}
	return &p, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(b *board.Board) error {
	switch {
	case cfg.WinPoints <= 1:
		return fmt.Errorf("winPoints must be over 1")
	case b == nil:
		return fmt.Errorf("board required")
	}
	return nil
}

// Tile returns the player's tile with the id.
func (p *Player) Tile(id int) (*tile.Tile, error) {
	t, ok := p.Tiles[id]
	if !ok {
		return nil, fmt.Errorf("player does not have tile with id %v", id)
	}
	return t, nil
}

// AllAttached reports whether every tile of the player is attached to the board.
func (p *Player) AllAttached() bool {
	for _, t := range p.Tiles {
		if !t.Attached() {
			return false
		}
	}
	return true
}

// DecrementWinPoints reduces the points the player would get for winning,
// never below two.
func (p *Player) DecrementWinPoints() {
	if p.WinPoints > 2 {
		p.WinPoints--
	}
}
