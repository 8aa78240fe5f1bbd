package board

import (
	"encoding/json"
	"sort"

	"github.com/polyfall-game/polyfall/game/tile"
)

type (
	// jsonBoard is the wire form of a board, used to send board state to players.
	// Holes lists every hole on the board and shadows the config's holes field.
	jsonBoard struct {
		Config
		Boxes []jsonBox       `json:"boxes,omitempty"`
		Holes []tile.Position `json:"holes,omitempty"`
	}

	// jsonBox is a covered box and the color of the tile covering it.
	jsonBox struct {
		X     int        `json:"x"`
		Y     int        `json:"y"`
		Color tile.Color `json:"color"`
	}
)

// MarshalJSON implements the encoding/json.Marshaler interface.
// Boxes and holes are sorted by row, then column.
func (b *Board) MarshalJSON() ([]byte, error) {
	jb := jsonBoard{
		Config: b.Config,
		Boxes:  make([]jsonBox, 0, len(b.boxes)),
		Holes:  make([]tile.Position, 0, len(b.holes)),
	}
	for p, t := range b.boxes {
		jb.Boxes = append(jb.Boxes, jsonBox{X: p.X, Y: p.Y, Color: t.Color()})
	}
	sort.Slice(jb.Boxes, func(i, j int) bool {
		if jb.Boxes[i].Y != jb.Boxes[j].Y {
			return jb.Boxes[i].Y < jb.Boxes[j].Y
		}
		return jb.Boxes[i].X < jb.Boxes[j].X
	})
	for p := range b.holes {
		jb.Holes = append(jb.Holes, p)
	}
	sort.Slice(jb.Holes, func(i, j int) bool {
		if jb.Holes[i].Y != jb.Holes[j].Y {
			return jb.Holes[i].Y < jb.Holes[j].Y
		}
		return jb.Holes[i].X < jb.Holes[j].X
	})
	if len(jb.Boxes) == 0 {
		jb.Boxes = nil
	}
	if len(jb.Holes) == 0 {
		jb.Holes = nil
	}
	return json.Marshal(jb)
}

// UnmarshalJSON implements the encoding/json.Unmarshaler interface.
// Covered boxes are rebuilt with anonymous single-box tiles carrying the
// color; the original tile identities are not part of the wire form.
func (b *Board) UnmarshalJSON(d []byte) error {
	var jb jsonBoard
	if err := json.Unmarshal(d, &jb); err != nil {
		return err
	}
	b.Config = jb.Config
	b.boxes = make(map[tile.Position]*tile.Tile, len(jb.Boxes))
	b.holes = make(map[tile.Position]struct{}, len(jb.Holes))
	b.tiles = nil
	for _, box := range jb.Boxes {
		t := tile.New(tile.Position{})
		t.SetColor(box.Color)
		b.boxes[tile.Position{X: box.X, Y: box.Y}] = t
	}
	for _, p := range jb.Holes {
		b.holes[p] = struct{}{}
	}
	return nil
}
