// Package tile implements the movable puzzle piece of the game and its placement on a grid.
//
// A tile's shape is a set of offsets relative to a reference point (0,0).
// A vertical I-piece of three cells could be {0,0 0,1 0,2}, or the same shape
// locally displaced, such as {3,1 3,2 3,3}.  The reference point is the point
// that gets attached to the hook, the absolute coordinate on the grid, so a
// piece meant to be placed centric should define its shape as {0,-1 0,0 0,1}.
//
// A tile can be moved and transformed freely while floating, placed
// temporarily for positioning, and finally attached to lock it onto the grid.
// All placement failures are reported by boolean results, never by errors.
package tile

import "github.com/polyfall-game/polyfall/server/log"

type (
	// Grid is the bounded playing field tiles are placed on.
	// The tile package only consumes this contract; the board package implements it.
	Grid interface {
		// CheckAvailable reports whether the cell is free for a final, locked placement.
		CheckAvailable(x, y int) bool
		// CheckAvailableTemp reports whether the cell can be occupied by a floating tile.
		// Policy toward the tile's own previous cells is the grid's decision.
		CheckAvailableTemp(x, y int) bool
		// CoverBox marks the cell as occupied by the tile.
		CoverBox(t *Tile, x, y int)
		// ClearBox marks the cell as free.
		ClearBox(x, y int)
		// AddTile registers the tile with the grid's bookkeeping.
		AddTile(t *Tile)
		// RemoveTile unregisters the tile.
		RemoveTile(t *Tile)
	}

	// Tile is a puzzle piece.  It owns its shape, knows at most one grid at a
	// time, and tracks the hook it was last successfully placed at.
	Tile struct {
		shape    Shape
		grid     Grid
		hook     Position
		hasHook  bool
		attached bool
		color    Color
		log      log.Logger
	}
)

// New creates a tile with the given shape offsets.
func New(shape ...Position) *Tile {
	t := Tile{
		shape: append(Shape{}, shape...),
		color: Red,
	}
	return &t
}

// NewFromStructure creates a tile from a two-dimensional grid of occupied
// cells, such as one loaded from the shape pool.  Offsets are centered on the
// midpoint of the structure using truncating division.
func NewFromStructure(structure [][]bool) *Tile {
	t := New()
	midY := len(structure) / 2
	midX := 0
	if len(structure) > 0 {
		midX = len(structure[0]) / 2
	}
	for y, row := range structure {
		for x, occupied := range row {
			if occupied {
				t.AddPoint(x-midX, y-midY)
			}
		}
	}
	return t
}

// SetLog sets the logger used for placement diagnostics.
func (t *Tile) SetLog(log log.Logger) {
	t.log = log
}

// AddPoint appends an offset to the shape.
func (t *Tile) AddPoint(x, y int) {
	t.shape = append(t.shape, Position{X: x, Y: y})
}

// AddPoints appends offsets to the shape.
func (t *Tile) AddPoints(shape ...Position) {
	t.shape = append(t.shape, shape...)
}

// RemovePoint removes every offset equal to (x,y) from the shape,
// reporting whether at least one was removed.
func (t *Tile) RemovePoint(x, y int) bool {
	p := Position{X: x, Y: y}
	removed := false
	kept := t.shape[:0]
	for _, o := range t.shape {
		if o == p {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	t.shape = kept
	return removed
}

// AttachToGrid locks the tile onto the grid at the hook, if every cell the
// shape needs is available, and reports whether it was.
//
// The tile is registered with the grid and marked attached even when the
// check fails; only the result tells whether cells were actually covered.
func (t *Tile) AttachToGrid(g Grid, hook Position) bool {
	t.grid = g
	ok := t.CheckPlaceable(hook)
	if ok {
		t.addToGrid(hook)
	}
	g.AddTile(t)
	t.attached = true
	return ok
}

// PlaceOnGrid puts the tile on the grid at the hook without attaching it.
// This is for positioning only.  On failure the tile is restored to the cells
// it covered before the call and false is returned.
func (t *Tile) PlaceOnGrid(g Grid, hook Position) bool {
	t.grid = g
	t.RemoveFromGrid()
	if !t.CheckPlaceableTemp(hook) {
		if t.hasHook && t.grid != nil {
			t.addToGrid(t.hook)
		}
		return false
	}
	return t.addToGrid(hook)
}

// addToGrid covers the cells of the shape at the hook and records the hook.
// Attached tiles must be detached first; trying to cover the cells of one
// again is reported and refused.
func (t *Tile) addToGrid(hook Position) bool {
	if t.attached {
		if t.log != nil {
			t.log.Printf("tile must be detached before placing")
		}
		return false
	}
	t.hook = hook
	t.hasHook = true
	for _, p := range t.shape {
		t.grid.CoverBox(t, hook.X+p.X, hook.Y+p.Y)
	}
	return true
}

// DetachFromGrid unlocks the tile, clears its cells, and unregisters it from
// the grid.  It does nothing if the tile is not attached.
func (t *Tile) DetachFromGrid() {
	if !t.attached {
		return
	}
	t.RemoveFromGrid()
	t.grid.RemoveTile(t)
	t.grid = nil
	t.attached = false
}

// RemoveFromGrid clears every cell the shape occupies at the current hook.
// It does nothing if the tile has never been placed.
func (t *Tile) RemoveFromGrid() {
	if !t.hasHook || t.grid == nil {
		return
	}
	for _, p := range t.shape {
		t.grid.ClearBox(t.hook.X+p.X, t.hook.Y+p.Y)
	}
}

// CheckPlaceable reports whether the tile could be attached at the hook.
// It is false if the tile is not associated with a grid.
func (t *Tile) CheckPlaceable(hook Position) bool {
	if t.grid == nil {
		return false
	}
	for _, p := range t.shape {
		if !t.grid.CheckAvailable(hook.X+p.X, hook.Y+p.Y) {
			return false
		}
	}
	return true
}

// CheckPlaceableTemp reports whether the tile could be placed temporarily at
// the hook.  For checking a final placement, use CheckPlaceable.
func (t *Tile) CheckPlaceableTemp(hook Position) bool {
	if t.grid == nil {
		return false
	}
	for _, p := range t.shape {
		if !t.grid.CheckAvailableTemp(hook.X+p.X, hook.Y+p.Y) {
			return false
		}
	}
	return true
}

// MoveUp shifts the tile's temporary position up by one cell.
func (t *Tile) MoveUp() bool {
	return t.move(0, -1)
}

// MoveDown shifts the tile's temporary position down by one cell.
func (t *Tile) MoveDown() bool {
	return t.move(0, 1)
}

// MoveLeft shifts the tile's temporary position left by one cell.
func (t *Tile) MoveLeft() bool {
	return t.move(-1, 0)
}

// MoveRight shifts the tile's temporary position right by one cell.
func (t *Tile) MoveRight() bool {
	return t.move(1, 0)
}

// move places the tile at the hook adjacent to the current one,
// reporting whether the new position was legal.
func (t *Tile) move(dx, dy int) bool {
	if !t.hasHook {
		return false
	}
	hook := Position{X: t.hook.X + dx, Y: t.hook.Y + dy}
	ok := t.PlaceOnGrid(t.grid, hook)
	if ok {
		t.hook = hook
	}
	return ok
}

// RotateRight rotates the shape a quarter turn clockwise.
// It has no effect on an empty shape or an attached tile.
func (t *Tile) RotateRight() {
	if len(t.shape) == 0 || t.attached {
		return
	}
	t.shape.invertY()
	t.shape.switchAxis()
}

// RotateLeft rotates the shape a quarter turn counter-clockwise.
// It has no effect on an empty shape or an attached tile.
func (t *Tile) RotateLeft() {
	if len(t.shape) == 0 || t.attached {
		return
	}
	t.shape.invertX()
	t.shape.switchAxis()
}

// MirrorVertically flips the shape across the horizontal midline of its bounding box.
// It has no effect on an empty shape or an attached tile.
func (t *Tile) MirrorVertically() {
	if len(t.shape) == 0 || t.attached {
		return
	}
	t.shape.invertY()
}

// MirrorHorizontally flips the shape across the vertical midline of its bounding box.
// It has no effect on an empty shape or an attached tile.
func (t *Tile) MirrorHorizontally() {
	if len(t.shape) == 0 || t.attached {
		return
	}
	t.shape.invertX()
}

// Center shifts the shape so it is symmetric about (0,0), making the tile
// placeable centric around the hook.  It has no effect on an empty shape.
func (t *Tile) Center() {
	t.shape.center()
}

// Hook returns the absolute grid coordinate the tile was last placed at
// and whether it has ever been placed.
func (t *Tile) Hook() (Position, bool) {
	return t.hook, t.hasHook
}

// Grid returns the grid associated with the tile, if any.
func (t *Tile) Grid() Grid {
	return t.grid
}

// SetGrid associates the tile with a grid.  The tile is no longer considered
// attached; cells it covered on a previous grid are not cleared.
func (t *Tile) SetGrid(g Grid) {
	t.grid = g
	t.attached = false
}

// Attached reports whether the tile has been attached to a grid.
func (t *Tile) Attached() bool {
	return t.attached
}

// Shape returns a copy of the tile's shape.
func (t *Tile) Shape() Shape {
	return append(Shape{}, t.shape...)
}

// Size returns the number of offsets in the tile's shape.
func (t *Tile) Size() int {
	return len(t.shape)
}

// Color returns the presentation color of the tile.
func (t *Tile) Color() Color {
	return t.color
}

// SetColor sets the presentation color of the tile.
func (t *Tile) SetColor(c Color) {
	t.color = c
}
