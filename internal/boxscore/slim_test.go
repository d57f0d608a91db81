package boxscore_test

import (
	"encoding/json"
	"testing"

	"github.com/fortuna/services/playbyplay-service/internal/boxscore"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

const sampleBox = `{
  "game": {
    "gameId": "0022300500",
    "gameStatusText": "Q3 5:12",
    "gameClock": "PT05M12.00S",
    "gameEt": "2024-01-15T19:30:00Z",
    "homeTeam": {
      "teamId": 1610612738, "teamName": "Celtics", "teamTricode": "BOS", "score": 78,
      "wins": 30, "losses": "12",
      "players": [
        {"firstName": " Jayson ", "familyName": "Tatum", "statistics": {
          "minutes": "PT25M01.00S", "points": 21, "fieldGoalsMade": "8", "fieldGoalsAttempted": 15.0,
          "threePointersMade": 3, "threePointersAttempted": 7, "freeThrowsMade": 2, "freeThrowsAttempted": 2,
          "reboundsOffensive": 1, "reboundsDefensive": 6, "assists": 4, "steals": 1, "blocks": 0,
          "turnovers": 2, "foulsPersonal": 1, "plusMinusPoints": "+7.0"}}
      ]
    },
    "awayTeam": {
      "teamId": 1610612747, "teamName": "Lakers", "teamTricode": "LAL", "score": "70",
      "players": [
        {"firstName": "LeBron", "familyName": "James", "statistics": {"minutes": "", "points": null}}
      ]
    }
  }
}`

func decodeSample(t *testing.T) boxscore.Game {
	t.Helper()
	var feed boxscore.Feed
	if err := json.Unmarshal([]byte(sampleBox), &feed); err != nil {
		t.Fatalf("Failed to decode sample: %v", err)
	}
	return feed.Game
}

func TestSlim(t *testing.T) {
	box := boxscore.Slim(decodeSample(t))

	if box.Start != "2024-01-15T19:30:00Z" {
		t.Errorf("Expected start from gameEt, got %q", box.Start)
	}
	home := box.Teams.Home
	if home == nil || home.Abbr != "BOS" || home.ID != 1610612738 || home.Name != "Celtics" {
		t.Fatalf("Unexpected home team: %+v", home)
	}
	if len(home.Players) != 1 {
		t.Fatalf("Expected 1 home player, got %d", len(home.Players))
	}

	want := models.StatLine{
		Min: "25:01", Pts: 21, FGM: 8, FGA: 15, TPM: 3, TPA: 7, FTM: 2, FTA: 2,
		OReb: 1, DReb: 6, Ast: 4, Stl: 1, Blk: 0, TO: 2, PF: 1, PlusMinus: 7,
	}
	p := home.Players[0]
	if p.First != "Jayson" || p.Last != "Tatum" {
		t.Errorf("Expected trimmed names, got %q %q", p.First, p.Last)
	}
	if p.Stats != want {
		t.Errorf("Expected %+v, got %+v", want, p.Stats)
	}

	away := box.Teams.Away.Players[0].Stats
	if away.Min != "00:00" || away.Pts != 0 {
		t.Errorf("Expected zeroed stats for missing values, got %+v", away)
	}
}

func TestSlim_MissingTeam(t *testing.T) {
	box := boxscore.Slim(boxscore.Game{GameTimeUTC: "2024-01-16T00:30:00Z"})
	if box.Teams.Home != nil || box.Teams.Away != nil {
		t.Error("Expected nil teams")
	}
	if box.Start != "2024-01-16T00:30:00Z" {
		t.Errorf("Expected start from gameTimeUTC, got %q", box.Start)
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int
	}{
		{"nil", nil, 0},
		{"int", 5, 5},
		{"float", 7.9, 7},
		{"numeric string", "12", 12},
		{"float string", "3.5", 3},
		{"signed string", "+4", 4},
		{"garbage", "n/a", 0},
		{"json number", json.Number("9"), 9},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boxscore.SafeInt(tt.input); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestNormalizeMinutes(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected string
	}{
		{"PT25M01.00S", "25:01"},
		{"PT05M59.90S", "05:59"},
		{"PT45.00S", "00:45"},
		{"31:12", "31:12"},
		{"", "00:00"},
		{nil, "00:00"},
		{12, "00:00"},
		{"abc", "00:00"},
	}

	for _, tt := range tests {
		if got := boxscore.NormalizeMinutes(tt.input); got != tt.expected {
			t.Errorf("NormalizeMinutes(%v): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestScheduleUpdates(t *testing.T) {
	game := decodeSample(t)
	u := boxscore.ScheduleUpdates(game)

	if u.Status != "Q3 5:12" || u.Time != "05:12" {
		t.Errorf("Unexpected status/time: %q %q", u.Status, u.Time)
	}
	if u.HomeScore != 78 || u.AwayScore != 70 {
		t.Errorf("Expected 78-70, got %d-%d", u.HomeScore, u.AwayScore)
	}
	if u.HomeRecord != "30-12" || u.AwayRecord != "" {
		t.Errorf("Unexpected records: %q %q", u.HomeRecord, u.AwayRecord)
	}

	entry := models.ScheduleEntry{AwayRecord: "25-17"}
	u.Apply(&entry)
	if entry.AwayRecord != "25-17" {
		t.Errorf("Expected missing record to keep existing value, got %q", entry.AwayRecord)
	}
	if entry.HomeTeamID != 1610612738 || entry.AwayTeamID != 1610612747 {
		t.Errorf("Expected team ids copied, got %d %d", entry.HomeTeamID, entry.AwayTeamID)
	}
	if boxscore.IsFinal(game) {
		t.Error("Expected live game not final")
	}
	if !boxscore.IsFinal(boxscore.Game{GameStatusText: "Final/OT"}) {
		t.Error("Expected Final/OT to be final")
	}
}
