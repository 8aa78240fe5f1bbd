// Package board implements the bounded grid tiles are placed on and tracks which tile covers each box.
package board

import (
	"errors"
	"strconv"

	"github.com/polyfall-game/polyfall/game/tile"
)

type (
	// Board is the playing field of one player.  It implements the grid
	// contract the tile package consumes.
	Board struct {
		boxes map[tile.Position]*tile.Tile
		holes map[tile.Position]struct{}
		tiles []*tile.Tile
		Config
	}

	// Config stores the dimensions for creating a board.
	// Holes are boxes removed from play, allowing irregular puzzle boards.
	Config struct {
		NumCols int             `json:"c"`
		NumRows int             `json:"r"`
		Holes   []tile.Position `json:"holes,omitempty"`
	}
)

const (
	minCols = 3
	minRows = 3
)

// boards must satisfy the grid contract of the tile package
var _ tile.Grid = new(Board)

// New creates an empty board.
func (cfg Config) New() (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New("creating board: validation: " + err.Error())
	}
	b := Board{
		boxes:  make(map[tile.Position]*tile.Tile),
		holes:  make(map[tile.Position]struct{}),
		Config: cfg,
	}
	for _, h := range cfg.Holes {
		b.MarkHole(h.X, h.Y)
	}
	return &b, nil
}

// Validate returns an error if the number of rows or columns is invalid.
func (cfg Config) Validate() error {
	switch {
	case cfg.NumCols < minCols:
		return errors.New("not enough columns on board, must be >= " + strconv.Itoa(minCols))
	case cfg.NumRows < minRows:
		return errors.New("not enough rows on board, must be >= " + strconv.Itoa(minRows))
	}
	for _, h := range cfg.Holes {
		if h.X < 0 || h.X >= cfg.NumCols || h.Y < 0 || h.Y >= cfg.NumRows {
			return errors.New("hole at " + strconv.Itoa(h.X) + "," + strconv.Itoa(h.Y) + " is not on the board")
		}
	}
	return nil
}

// inBounds reports whether the coordinate is on the board.
func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.NumCols && y >= 0 && y < b.NumRows
}

// MarkHole removes the box from play.  Holes never accept a tile, which
// allows irregular puzzle boards.
func (b *Board) MarkHole(x, y int) {
	if b.inBounds(x, y) {
		b.holes[tile.Position{X: x, Y: y}] = struct{}{}
	}
}

// Playable reports whether the box is on the board and not a hole.
func (b *Board) Playable(x, y int) bool {
	if !b.inBounds(x, y) {
		return false
	}
	_, hole := b.holes[tile.Position{X: x, Y: y}]
	return !hole
}

// CheckAvailable reports whether the box is free for a final, locked
// placement.  Boxes covered by attached tiles block; a box covered only by a
// floating tile is still available, so that tile can be locked in place.
func (b *Board) CheckAvailable(x, y int) bool {
	if !b.Playable(x, y) {
		return false
	}
	t := b.boxes[tile.Position{X: x, Y: y}]
	return t == nil || !t.Attached()
}

// CheckAvailableTemp reports whether a floating tile may occupy the box.
// Boxes covered by other tiles are allowed; a floating tile may pass over them.
func (b *Board) CheckAvailableTemp(x, y int) bool {
	return b.Playable(x, y)
}

// CoverBox marks the box as occupied by the tile.
func (b *Board) CoverBox(t *tile.Tile, x, y int) {
	if b.inBounds(x, y) {
		b.boxes[tile.Position{X: x, Y: y}] = t
	}
}

// ClearBox marks the box as free.
func (b *Board) ClearBox(x, y int) {
	delete(b.boxes, tile.Position{X: x, Y: y})
}

// BoxOwner returns the tile covering the box, or nil.
func (b *Board) BoxOwner(x, y int) *tile.Tile {
	return b.boxes[tile.Position{X: x, Y: y}]
}

// AddTile registers the tile with the board.  Registering the same tile again
// has no effect.
func (b *Board) AddTile(t *tile.Tile) {
	for _, t2 := range b.tiles {
		if t2 == t {
			return
		}
	}
	b.tiles = append(b.tiles, t)
}

// RemoveTile unregisters the tile from the board.
func (b *Board) RemoveTile(t *tile.Tile) {
	for i, t2 := range b.tiles {
		if t2 == t {
			b.tiles = append(b.tiles[:i], b.tiles[i+1:]...)
			return
		}
	}
}

// Tiles returns the tiles registered with the board.
func (b *Board) Tiles() []*tile.Tile {
	tiles := make([]*tile.Tile, len(b.tiles))
	copy(tiles, b.tiles)
	return tiles
}

// CompletedRows returns the rows whose playable boxes are all covered,
// in increasing order.
func (b *Board) CompletedRows() []int {
	var rows []int
	for y := 0; y < b.NumRows; y++ {
		if b.rowCompleted(y) {
			rows = append(rows, y)
		}
	}
	return rows
}

// rowCompleted reports whether every playable box of the row is covered.
// Rows that are entirely holes do not count as completed.
func (b *Board) rowCompleted(y int) bool {
	playable := 0
	for x := 0; x < b.NumCols; x++ {
		if !b.Playable(x, y) {
			continue
		}
		playable++
		if b.boxes[tile.Position{X: x, Y: y}] == nil {
			return false
		}
	}
	return playable > 0
}

// ClearRows frees every box in the rows, returning the number of boxes cleared.
func (b *Board) ClearRows(rows ...int) int {
	cleared := 0
	for _, y := range rows {
		for x := 0; x < b.NumCols; x++ {
			if b.boxes[tile.Position{X: x, Y: y}] != nil {
				b.ClearBox(x, y)
				cleared++
			}
		}
	}
	return cleared
}

// Filled reports whether every playable box on the board is covered.
func (b *Board) Filled() bool {
	for y := 0; y < b.NumRows; y++ {
		for x := 0; x < b.NumCols; x++ {
			if b.Playable(x, y) && b.boxes[tile.Position{X: x, Y: y}] == nil {
				return false
			}
		}
	}
	return true
}

// CoveredBoxes returns the number of covered boxes on the board.
func (b *Board) CoveredBoxes() int {
	return len(b.boxes)
}
