package playbyplay_test

import (
	"testing"

	"github.com/fortuna/services/playbyplay-service/internal/playbyplay"
)

func TestFixPlayerName(t *testing.T) {
	tests := []struct {
		name     string
		player   string
		desc     string
		expected string
	}{
		{"plain", "Smith", "Smith 2PT Layup (2 PTS)", "Smith"},
		{"initial prefix", "Helper", "A. Helper 2PT Layup (2 PTS)", "A. Helper"},
		{"multi-word name", "Murphy III", "T. Murphy III 2PT Layup (2 PTS)", "T. Murphy III"},
		{"no description", "Smith", "", "Smith"},
		{"name missing", "", "Smith 2PT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := playbyplay.FixPlayerName(playbyplay.RawAction{PlayerName: tt.player, Description: tt.desc})
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseAssistName(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		tricode  string
		expected string
	}{
		{"initial and surname", "Scorer 2PT Jump Shot (2 PTS) (A. Helper 1 AST)", "NOP", "A. Helper"},
		{"surname only", "Murphy III 2PT Layup (2 PTS) (Jones 4 AST)", "NOP", "Jones"},
		{"porter override", "Mitchell 3PT (3 PTS) (Porter 2 AST)", "CLE", "Porter Jr."},
		{"porter other team", "Doe 3PT (3 PTS) (Porter 2 AST)", "HOU", "Porter"},
		{"jokic override", "Murray 2PT (2 PTS) (Jokic 9 AST)", "DEN", "Jokić"},
		{"no assist", "Smith 2PT Layup (2 PTS)", "SAS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := playbyplay.ParseAssistName(playbyplay.RawAction{Description: tt.desc, TeamTricode: tt.tricode})
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestInferTeams(t *testing.T) {
	tests := []struct {
		name         string
		actions      []playbyplay.RawAction
		expectedAway int64
		expectedHome int64
		ok           bool
	}{
		{
			name: "home tag majority",
			actions: []playbyplay.RawAction{
				{TeamID: 20, Location: "h"}, {TeamID: 20, Location: "h"}, {TeamID: 10, Location: "h"},
			},
			expectedAway: 10, expectedHome: 20, ok: true,
		},
		{
			name: "visitor tag breaks tie",
			actions: []playbyplay.RawAction{
				{TeamID: 10, Location: "h"}, {TeamID: 20, Location: "h"}, {TeamID: 20, Location: "v"},
			},
			expectedAway: 20, expectedHome: 10, ok: true,
		},
		{
			name:         "ascending id fallback",
			actions:      []playbyplay.RawAction{{TeamID: 20}, {TeamID: 10}},
			expectedAway: 10, expectedHome: 20, ok: true,
		},
		{
			name:    "single team",
			actions: []playbyplay.RawAction{{TeamID: 10, Location: "h"}},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			away, home, ok := playbyplay.InferTeams(tt.actions)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if away != tt.expectedAway || home != tt.expectedHome {
				t.Errorf("Expected away=%d home=%d, got away=%d home=%d", tt.expectedAway, tt.expectedHome, away, home)
			}
		})
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		input      string
		seconds    float64
		normalized string
	}{
		{"PT11M10.00S", 670, "PT11M10.00S"},
		{"PT11M10S", 670, "PT11M10.00S"},
		{"PT00M05.30S", 5.3, "PT00M05.30S"},
		{"11:10", 670, "PT11M10.00S"},
		{"0:45.5", 45.5, "PT00M45.50S"},
		{"1110", 670, "PT11M10.00S"},
		{"45", 45, "PT00M45.00S"},
		{"", 0, "PT00M00.00S"},
		{"garbage", 0, "PT00M00.00S"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := playbyplay.ClockSeconds(tt.input); got < tt.seconds-0.001 || got > tt.seconds+0.001 {
				t.Errorf("Expected %v seconds, got %v", tt.seconds, got)
			}
			if got := playbyplay.NormalizeClock(tt.input); got != tt.normalized {
				t.Errorf("Expected %s, got %s", tt.normalized, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		action   playbyplay.RawAction
		category playbyplay.Category
		text     string
	}{
		{"made three", playbyplay.RawAction{ActionType: "3pt", ShotResult: "Made", ShotDistance: 26}, playbyplay.CategoryShot, "Made 3PT 26ft"},
		{"legacy miss", playbyplay.RawAction{ActionType: "Missed Shot", Description: "MISS Smith 17' Jump Shot"}, playbyplay.CategoryShot, "Missed 2PT 17ft"},
		{"free throw", playbyplay.RawAction{ActionType: "freethrow", ShotResult: "Missed"}, playbyplay.CategoryFreeThrow, "Missed FT"},
		{"rebound", playbyplay.RawAction{ActionType: "rebound", SubType: "defensive"}, playbyplay.CategoryRebound, "Def Rebound"},
		{"turnover", playbyplay.RawAction{ActionType: "turnover", SubType: "bad pass"}, playbyplay.CategoryTurnover, "Turnover: bad pass"},
		{"foul by keyword", playbyplay.RawAction{Description: "Smith P.FOUL (P1.T1) (PF)"}, playbyplay.CategoryFoul, "Foul"},
		{"jump ball", playbyplay.RawAction{ActionType: "jumpball"}, playbyplay.CategoryJumpBall, "Jump Ball"},
		{"sub in", playbyplay.RawAction{ActionType: "substitution", Description: "SUB in: Brown"}, playbyplay.CategorySubstitution, "Sub in"},
		{"period end", playbyplay.RawAction{ActionType: "period", SubType: "end"}, playbyplay.CategoryPeriod, "End of Period"},
		{"steal keyword", playbyplay.RawAction{Description: "Jones STEAL (1 STL)"}, playbyplay.CategorySteal, "Steal"},
		{"other", playbyplay.RawAction{ActionType: "instantreplay"}, playbyplay.CategoryOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := playbyplay.Classify(tt.action)
			if c.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, c.Category)
			}
			if c.Text() != tt.text {
				t.Errorf("Expected text %q, got %q", tt.text, c.Text())
			}
		})
	}
}
