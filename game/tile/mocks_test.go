package tile

type mockGrid struct {
	checkAvailableFunc     func(x, y int) bool
	checkAvailableTempFunc func(x, y int) bool
	coverBoxFunc           func(t *Tile, x, y int)
	clearBoxFunc           func(x, y int)
	addTileFunc            func(t *Tile)
	removeTileFunc         func(t *Tile)
}

func (g *mockGrid) CheckAvailable(x, y int) bool {
	return g.checkAvailableFunc(x, y)
}

func (g *mockGrid) CheckAvailableTemp(x, y int) bool {
	return g.checkAvailableTempFunc(x, y)
}

func (g *mockGrid) CoverBox(t *Tile, x, y int) {
	g.coverBoxFunc(t, x, y)
}

func (g *mockGrid) ClearBox(x, y int) {
	g.clearBoxFunc(x, y)
}

func (g *mockGrid) AddTile(t *Tile) {
	g.addTileFunc(t)
}

func (g *mockGrid) RemoveTile(t *Tile) {
	g.removeTileFunc(t)
}

// gridState records the mutations a tile makes to a mock grid.
type gridState struct {
	covered     map[Position]int
	addTiles    int
	removeTiles int
}

// newRecordingGrid creates a mock grid that tracks covered cells and tile
// registrations.  The availability functions may be nil to always allow.
func newRecordingGrid(available, availableTemp func(x, y int) bool) (*mockGrid, *gridState) {
	if available == nil {
		available = func(x, y int) bool { return true }
	}
	if availableTemp == nil {
		availableTemp = func(x, y int) bool { return true }
	}
	state := gridState{
		covered: make(map[Position]int),
	}
	g := mockGrid{
		checkAvailableFunc:     available,
		checkAvailableTempFunc: availableTemp,
		coverBoxFunc: func(t *Tile, x, y int) {
			state.covered[Position{X: x, Y: y}]++
		},
		clearBoxFunc: func(x, y int) {
			p := Position{X: x, Y: y}
			state.covered[p]--
			if state.covered[p] <= 0 {
				delete(state.covered, p)
			}
		},
		addTileFunc: func(t *Tile) {
			state.addTiles++
		},
		removeTileFunc: func(t *Tile) {
			state.removeTiles++
		},
	}
	return &g, &state
}

// coveredCells returns the covered positions of the state as a set.
func (s *gridState) coveredCells() map[Position]struct{} {
	cells := make(map[Position]struct{}, len(s.covered))
	for p, n := range s.covered {
		if n > 0 {
			cells[p] = struct{}{}
		}
	}
	return cells
}
