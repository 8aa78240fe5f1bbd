package game

import (
	"strings"
	"testing"
	"time"

	"github.com/polyfall-game/polyfall/game/board"
)

func TestRules(t *testing.T) {
	basic := Config{}
	custom := Config{
		Board:              board.Config{NumCols: 6, NumRows: 6},
		TilesPerPlayer:     5,
		ClearCompletedRows: true,
		RoundDuration:      10 * time.Minute,
	}
	basicRules := basic.Rules()
	customRules := custom.Rules()
	if len(customRules) <= len(basicRules) {
		t.Errorf("wanted custom config to add rules: %v <= %v", len(customRules), len(basicRules))
	}
	tilesFound, durationFound := false, false
	for _, r := range customRules {
		if strings.Contains(r, "5 tiles") {
			tilesFound = true
		}
		if strings.Contains(r, "10m0s") {
			durationFound = true
		}
	}
	if !tilesFound {
		t.Errorf("wanted a rule mentioning the tile count, got %v", customRules)
	}
	if !durationFound {
		t.Errorf("wanted a rule mentioning the round duration, got %v", customRules)
	}
}

func TestStatusString(t *testing.T) {
	statusStringTests := []struct {
		s    Status
		want string
	}{
		{NotStarted, "Not Started"},
		{InProgress, "In Progress"},
		{Finished, "Finished"},
		{Deleted, "Deleted"},
		{Status(0), "?"},
	}
	for i, test := range statusStringTests {
		if got := test.s.String(); got != test.want {
			t.Errorf("Test %v: wanted %q, got %q", i, test.want, got)
		}
	}
}

func TestCanJoin(t *testing.T) {
	canJoinTests := []struct {
		info       Info
		playerName string
		want       bool
	}{
		{
			info:       Info{Status: NotStarted},
			playerName: "wilma",
			want:       true,
		},
		{
			info:       Info{Status: InProgress, Players: []string{"fred", "barney"}},
			playerName: "wilma",
		},
		{
			info:       Info{Status: InProgress, Players: []string{"fred", "barney"}},
			playerName: "barney",
			want:       true,
		},
		{
			info:       Info{Status: Finished, Players: []string{"fred"}},
			playerName: "fred",
			want:       true,
		},
	}
	for i, test := range canJoinTests {
		if got := test.info.CanJoin(test.playerName); got != test.want {
			t.Errorf("Test %v: wanted CanJoin(%q) = %v, got %v", i, test.playerName, test.want, got)
		}
	}
}
