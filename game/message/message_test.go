package message

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/board"
	"github.com/polyfall-game/polyfall/game/tile"
)

func TestMessageJSON(t *testing.T) {
	newBoard := func(cfg board.Config) *board.Board {
		b, err := cfg.New()
		if err != nil {
			t.Fatalf("unwanted error creating board: %v", err)
		}
		return b
	}
	messageJSONTests := []struct {
		m Message
		j string
	}{
		{
			j: `{"type":0}`, // the MessageType should always be marshalled
		},
		{
			m: Message{Type: JoinGame, Game: &game.Info{ID: 6}},
			j: `{"type":2,"game":{"id":6}}`,
		},
		{
			m: Message{Type: GameChat, Info: "wilma started the game."},
			j: `{"type":5,"info":"wilma started the game."}`,
		},
		{
			m: Message{Type: PlaceTile, TileID: 3, Hook: &tile.Position{X: 2, Y: 5}},
			j: `{"type":8,"tileId":3,"hook":{"x":2,"y":5}}`,
		},
		{
			m: Message{Type: RotateTileRight, TileID: 7},
			j: `{"type":13,"tileId":7}`,
		},
		{
			m: Message{Type: RefreshGameBoard, Board: newBoard(board.Config{NumCols: 4, NumRows: 3})},
			j: `{"type":6,"board":{"c":4,"r":3}}`,
		},
		{
			m: Message{Type: GameInfos, Games: []game.Info{{ID: 7, Status: 2, Players: []string{"fred", "barney"}, CreatedAt: 1257894000}}},
			j: `{"type":18,"games":[{"id":7,"status":2,"players":["fred","barney"],"createdAt":1257894000}]}`,
		},
		{
			m: Message{Type: CreateGame, Game: &game.Info{Config: &game.Config{Board: board.Config{NumCols: 9, NumRows: 9}, TilesPerPlayer: 12, Category: "tetromino"}}},
			j: `{"type":1,"game":{"config":{"board":{"c":9,"r":9},"tilesPerPlayer":12,"category":"tetromino"}}}`,
		},
	}
	for i, test := range messageJSONTests {
		j2, err := json.Marshal(test.m)
		switch {
		case err != nil:
			t.Errorf("Test %v (Marshal): unwanted error while marshalling Message '%v': %v", i, test.m, err)
		case test.j != string(j2):
			t.Errorf("Test %v (Marshal): wanted json to be:\n%v\nbut was:\n%v", i, test.j, string(j2))
			continue
		}
		var m2 Message
		if err := json.Unmarshal([]byte(test.j), &m2); err != nil {
			t.Errorf("Test %v (Unmarshal): unwanted error while unmarshalling json '%v': %v", i, test.j, err)
			continue
		}
		j3, err := json.Marshal(m2)
		switch {
		case err != nil:
			t.Errorf("Test %v (Unmarshal): unwanted error while re-marshalling Message '%v': %v", i, m2, err)
		case test.j != string(j3):
			t.Errorf("Test %v (Unmarshal): wanted re-marshalled json to be:\n%v\nbut was:\n%v", i, test.j, string(j3))
		}
	}
}

func TestMessageMarshalOmitsInternals(t *testing.T) {
	m := Message{PlayerName: "wilma", Addr: "127.0.0.1:8080"}
	want := []byte(`{"type":0}`)
	got, err := json.Marshal(m)
	switch {
	case err != nil:
		t.Errorf("unwanted error: %v", err)
	case !reflect.DeepEqual(want, got):
		t.Errorf("wanted %v, got %v", string(want), string(got))
	}
}
