package tile

import "encoding/json"

// jsonTile is the wire form of a tile.  The hook is omitted for tiles that
// have never been placed.
type jsonTile struct {
	Shape Shape     `json:"shape"`
	Hook  *Position `json:"hook,omitempty"`
	Color Color     `json:"color"`
}

// MarshalJSON implements the encoding/json.Marshaler interface.
func (t *Tile) MarshalJSON() ([]byte, error) {
	jt := jsonTile{
		Shape: t.shape,
		Color: t.color,
	}
	if t.hasHook {
		hook := t.hook
		jt.Hook = &hook
	}
	return json.Marshal(jt)
}

// UnmarshalJSON implements the encoding/json.Unmarshaler interface.
// The decoded tile is free-floating; it has no grid association.
func (t *Tile) UnmarshalJSON(b []byte) error {
	var jt jsonTile
	if err := json.Unmarshal(b, &jt); err != nil {
		return err
	}
	t.shape = jt.Shape
	t.color = jt.Color
	t.grid = nil
	t.attached = false
	t.hasHook = false
	if jt.Hook != nil {
		t.hook = *jt.Hook
		t.hasHook = true
	}
	return nil
}
