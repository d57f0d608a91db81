package playbyplay_test

import (
	"encoding/json"
	"testing"

	"github.com/fortuna/services/playbyplay-service/internal/playbyplay"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

const (
	awayID = 1610612740
	homeID = 1610612759
)

func TestTransform_AssistOnlyPlayer(t *testing.T) {
	actions := []playbyplay.RawAction{
		{
			ActionNumber: "1",
			ActionID:     "1",
			Clock:        "PT11M10S",
			Period:       1,
			TeamID:       awayID,
			TeamTricode:  "NOP",
			PersonID:     999,
			PlayerName:   "Scorer",
			PlayerNameI:  "S. Scorer",
			Description:  "Scorer 2PT Jump Shot (2 PTS) (A. Helper 1 AST)",
			ActionType:   "Made Shot",
			SubType:      "Jump Shot",
			ScoreHome:    "0",
			ScoreAway:    "2",
		},
	}

	flow := playbyplay.Transform(playbyplay.Input{
		GameID:        "test-assist-only",
		Actions:       actions,
		AwayTeamID:    awayID,
		HomeTeamID:    homeID,
		IncludeEvents: true,
	})

	scorer := flow.Players.Away["Scorer"]
	if len(scorer) != 1 {
		t.Fatalf("Expected 1 event for Scorer, got %d", len(scorer))
	}
	if scorer[0].Text != "Made 2PT" {
		t.Errorf("Expected text 'Made 2PT', got %q", scorer[0].Text)
	}

	helper := flow.Players.Away["A. Helper"]
	if len(helper) != 1 {
		t.Fatalf("Expected 1 event for A. Helper, got %d", len(helper))
	}
	if helper[0].Type != "Assist" {
		t.Errorf("Expected Assist type, got %q", helper[0].Type)
	}
	if helper[0].Seq != "1a" || helper[0].ID != "1a" {
		t.Errorf("Expected seq/id 1a, got %q/%q", helper[0].Seq, helper[0].ID)
	}

	segments := flow.Segments.Away["A. Helper"]
	if len(segments) == 0 {
		t.Fatal("Expected a timeline for A. Helper")
	}
	if segments[0].Start != "PT12M00.00S" {
		t.Errorf("Expected start PT12M00.00S, got %s", segments[0].Start)
	}
	if segments[0].End != "PT11M10.00S" {
		t.Errorf("Expected end PT11M10.00S, got %s", segments[0].End)
	}

	if len(flow.Events) != 2 {
		t.Errorf("Expected 2 merged events, got %d", len(flow.Events))
	}
	if flow.Periods != 4 {
		t.Errorf("Expected 4 periods, got %d", flow.Periods)
	}
	if flow.Last == nil || flow.Last.AwayScore != "2" {
		t.Errorf("Expected last away score 2, got %+v", flow.Last)
	}
}

func TestTransform_IsDeterministic(t *testing.T) {
	actions := sampleGame()
	in := playbyplay.Input{GameID: "g", Actions: actions, AwayTeamID: awayID, HomeTeamID: homeID, IncludeEvents: true}

	first, _ := json.Marshal(playbyplay.Transform(in))
	second, _ := json.Marshal(playbyplay.Transform(in))
	if string(first) != string(second) {
		t.Error("Expected identical output for identical input")
	}

	flow := playbyplay.Transform(in)
	count := 0
	for _, ev := range flow.Players.Away["Jones"] {
		if ev.Type == "Assist" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one synthesized assist for Jones, got %d", count)
	}
}

func TestTransform_EventsSorted(t *testing.T) {
	flow := playbyplay.Transform(playbyplay.Input{
		GameID: "g", Actions: sampleGame(), AwayTeamID: awayID, HomeTeamID: homeID, IncludeEvents: true,
	})
	if len(flow.Events) == 0 {
		t.Fatal("Expected merged events")
	}
	for i := 1; i < len(flow.Events); i++ {
		prev, cur := flow.Events[i-1], flow.Events[i]
		if prev.Period > cur.Period {
			t.Fatalf("Event %d out of period order: %d > %d", i, prev.Period, cur.Period)
		}
		if prev.Period == cur.Period && playbyplay.ClockSeconds(prev.Clock) < playbyplay.ClockSeconds(cur.Clock) {
			t.Fatalf("Event %d out of clock order: %s before %s", i, prev.Clock, cur.Clock)
		}
	}
}

func TestTransform_ScoreTimeline(t *testing.T) {
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: sampleGame(), AwayTeamID: awayID, HomeTeamID: homeID})

	want := []models.ScorePoint{
		{Period: 1, Clock: "PT11M30.00S", AwayScore: "2", HomeScore: "0"},
		{Period: 1, Clock: "PT10M02.00S", AwayScore: "2", HomeScore: "3"},
		{Period: 2, Clock: "PT11M00.00S", AwayScore: "4", HomeScore: "3"},
	}
	if len(flow.Score) != len(want) {
		t.Fatalf("Expected %d score points, got %d: %+v", len(want), len(flow.Score), flow.Score)
	}
	for i := range want {
		if flow.Score[i] != want[i] {
			t.Errorf("Score point %d: expected %+v, got %+v", i, want[i], flow.Score[i])
		}
	}
	last := flow.Score[len(flow.Score)-1]
	if last.AwayScore != flow.Last.AwayScore || last.HomeScore != flow.Last.HomeScore {
		t.Errorf("Expected final score point to match last action, got %+v vs %+v", last, flow.Last)
	}
}

func TestTransform_SubForDialect(t *testing.T) {
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: sampleGame(), AwayTeamID: awayID, HomeTeamID: homeID})

	jones := flow.Segments.Away["Jones"]
	if len(jones) != 1 {
		t.Fatalf("Expected 1 segment for Jones, got %+v", jones)
	}
	if jones[0].Start != "PT12M00.00S" || jones[0].End != "PT09M00.00S" {
		t.Errorf("Expected Jones on 12:00-9:00, got %+v", jones[0])
	}

	bench := flow.Segments.Away["Bench"]
	if len(bench) != 2 {
		t.Fatalf("Expected 2 segments for Bench, got %+v", bench)
	}
	if bench[0].Start != "PT09M00.00S" || bench[0].End != "PT00M00.00S" {
		t.Errorf("Expected Bench on 9:00 to quarter end, got %+v", bench[0])
	}
	if bench[1].Period != 2 || bench[1].Start != "PT12M00.00S" || bench[1].End != "PT11M00.00S" {
		t.Errorf("Expected Bench seeded in Q2, got %+v", bench[1])
	}
}

func TestTransform_InOutDialect(t *testing.T) {
	actions := []playbyplay.RawAction{
		{ActionNumber: "1", Period: 5, Clock: "PT04M30.00S", TeamID: homeID, PlayerName: "Smith", Description: "Smith Free Throw 1 of 2 (1 PTS)", ActionType: "freethrow", ShotResult: "Made", ScoreHome: "101", ScoreAway: "100"},
		{ActionNumber: "2", Period: 5, Clock: "PT04M30.00S", TeamID: homeID, PlayerName: "Smith", Description: "SUB out: Smith", ActionType: "substitution", SubType: "out"},
		{ActionNumber: "3", Period: 5, Clock: "PT04M30.00S", TeamID: homeID, PlayerName: "Brown", Description: "SUB in: Brown", ActionType: "substitution", SubType: "in"},
		{ActionNumber: "4", Period: 5, Clock: "PT01M00.00S", TeamID: awayID, PlayerName: "Lee", Description: "Lee 3PT Jump Shot (3 PTS)", ActionType: "3pt", ShotResult: "Made", ShotDistance: 25, ScoreHome: "101", ScoreAway: "103"},
	}
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: actions, AwayTeamID: awayID, HomeTeamID: homeID})

	if flow.Periods != 5 {
		t.Errorf("Expected 5 periods, got %d", flow.Periods)
	}

	smith := flow.Segments.Home["Smith"]
	if len(smith) != 1 || smith[0].Start != "PT05M00.00S" || smith[0].End != "PT04M30.00S" {
		t.Errorf("Expected Smith on 5:00-4:30 in OT, got %+v", smith)
	}
	brown := flow.Segments.Home["Brown"]
	if len(brown) != 1 || brown[0].Start != "PT04M30.00S" || brown[0].End != "PT01M00.00S" {
		t.Errorf("Expected Brown on 4:30 to the last clock, got %+v", brown)
	}
	if got := flow.Players.Away["Lee"][0].Text; got != "Made 3PT 25ft" {
		t.Errorf("Expected 'Made 3PT 25ft', got %q", got)
	}
}

func TestTransform_UnknownTeamStillMerged(t *testing.T) {
	actions := append(sampleGame(), playbyplay.RawAction{
		ActionNumber: "99", Period: 2, Clock: "PT10M00.00S", TeamID: 42, PlayerName: "Stranger", Description: "Stranger Foul", ActionType: "foul",
	})
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: actions, AwayTeamID: awayID, HomeTeamID: homeID, IncludeEvents: true})

	if _, ok := flow.Players.Away["Stranger"]; ok {
		t.Error("Expected Stranger to be skipped from away grouping")
	}
	if _, ok := flow.Players.Home["Stranger"]; ok {
		t.Error("Expected Stranger to be skipped from home grouping")
	}
	found := false
	for _, ev := range flow.Events {
		if ev.Seq == "99" {
			found = true
		}
	}
	if !found {
		t.Error("Expected unknown-team action in merged events")
	}
}

func TestTransform_InfersTeams(t *testing.T) {
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: sampleGame()})
	if _, ok := flow.Players.Away["Jones"]; !ok {
		t.Errorf("Expected Jones on the inferred away side, got %v", flow.Players)
	}
	if _, ok := flow.Players.Home["Smith"]; !ok {
		t.Errorf("Expected Smith on the inferred home side, got %v", flow.Players)
	}
}

func TestTransform_FeedPreservesOrder(t *testing.T) {
	actions := sampleGame()
	flow := playbyplay.Transform(playbyplay.Input{GameID: "g", Actions: actions, AwayTeamID: awayID, HomeTeamID: homeID, IncludeFeed: true})
	if len(flow.Feed) != len(actions) {
		t.Fatalf("Expected %d feed entries, got %d", len(actions), len(flow.Feed))
	}
	for i, ev := range flow.Feed {
		if ev.Seq != string(actions[i].ActionNumber) {
			t.Errorf("Feed entry %d: expected seq %s, got %s", i, actions[i].ActionNumber, ev.Seq)
		}
	}
}

func TestRawAction_DecodesMixedTypes(t *testing.T) {
	data := `{"actionNumber": 7, "actionId": "8", "period": "2", "teamId": 1610612740, "scoreHome": 10, "scoreAway": "12", "clock": "PT05M00.00S", "shotDistance": "23.4"}`
	var a playbyplay.RawAction
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a.ActionNumber != "7" || a.ActionID != "8" {
		t.Errorf("Expected 7/8, got %s/%s", a.ActionNumber, a.ActionID)
	}
	if a.Period != 2 || a.TeamID != 1610612740 {
		t.Errorf("Expected period 2 team 1610612740, got %d %d", a.Period, a.TeamID)
	}
	if a.ScoreHome != "10" || a.ScoreAway != "12" {
		t.Errorf("Expected 10/12, got %s/%s", a.ScoreHome, a.ScoreAway)
	}
	if a.ShotDistance != 23.4 {
		t.Errorf("Expected 23.4, got %v", a.ShotDistance)
	}
}

// sampleGame is a short legacy-dialect game: NOP (away) at SAS (home)
func sampleGame() []playbyplay.RawAction {
	return []playbyplay.RawAction{
		{ActionNumber: "1", Period: 1, Clock: "PT12M00.00S", Description: "Start of 1st Period", ActionType: "period", SubType: "start"},
		{ActionNumber: "2", Period: 1, Clock: "PT11M30.00S", TeamID: awayID, TeamTricode: "NOP", Location: "v", PlayerName: "Murphy III", Description: "Murphy III 2PT Layup (2 PTS) (Jones 1 AST)", ActionType: "Made Shot", ScoreAway: "2", ScoreHome: "0"},
		{ActionNumber: "3", Period: 1, Clock: "PT10M02.00S", TeamID: homeID, TeamTricode: "SAS", Location: "h", PlayerName: "Smith", Description: "Smith 26' 3PT Jump Shot (3 PTS)", ActionType: "Made Shot", ScoreAway: "2", ScoreHome: "3"},
		{ActionNumber: "4", Period: 1, Clock: "PT09M40.00S", TeamID: homeID, TeamTricode: "SAS", Location: "h", PlayerName: "Smith", Description: "MISS Smith 3PT Jump Shot", ActionType: "Missed Shot", ScoreAway: "2", ScoreHome: "3"},
		{ActionNumber: "5", Period: 1, Clock: "PT09M00.00S", TeamID: awayID, TeamTricode: "NOP", Location: "v", PlayerName: "Jones", Description: "SUB: Bench FOR Jones", ActionType: "Substitution", ScoreAway: "2", ScoreHome: "3"},
		{ActionNumber: "6", Period: 2, Clock: "PT11M00.00S", TeamID: awayID, TeamTricode: "NOP", Location: "v", PlayerName: "Bench", Description: "Bench 2PT Dunk (2 PTS)", ActionType: "Made Shot", ScoreAway: "4", ScoreHome: "3"},
	}
}
