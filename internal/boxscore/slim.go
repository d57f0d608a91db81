package boxscore

import (
	"strings"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Slim reduces a raw box score to the roster and stat lines shipped in a gamepack
func Slim(g Game) *models.SlimBox {
	start := g.GameEt
	if start == "" {
		start = g.GameTimeUTC
	}
	if start == "" {
		start = g.GameDateTimeUTC
	}

	return &models.SlimBox{
		Start: start,
		Teams: models.SlimTeams{
			Away: slimTeam(g.AwayTeam),
			Home: slimTeam(g.HomeTeam),
		},
	}
}

func slimTeam(t *Team) *models.SlimTeam {
	if t == nil {
		return nil
	}

	players := make([]models.SlimPlayer, 0, len(t.Players))
	for _, p := range t.Players {
		s := p.Statistics
		players = append(players, models.SlimPlayer{
			First: strings.TrimSpace(p.FirstName),
			Last:  strings.TrimSpace(p.FamilyName),
			Stats: models.StatLine{
				Min:       NormalizeMinutes(s["minutes"]),
				Pts:       SafeInt(s["points"]),
				FGM:       SafeInt(s["fieldGoalsMade"]),
				FGA:       SafeInt(s["fieldGoalsAttempted"]),
				TPM:       SafeInt(s["threePointersMade"]),
				TPA:       SafeInt(s["threePointersAttempted"]),
				FTM:       SafeInt(s["freeThrowsMade"]),
				FTA:       SafeInt(s["freeThrowsAttempted"]),
				OReb:      SafeInt(s["reboundsOffensive"]),
				DReb:      SafeInt(s["reboundsDefensive"]),
				Ast:       SafeInt(s["assists"]),
				Stl:       SafeInt(s["steals"]),
				Blk:       SafeInt(s["blocks"]),
				TO:        SafeInt(s["turnovers"]),
				PF:        SafeInt(s["foulsPersonal"]),
				PlusMinus: SafeInt(s["plusMinusPoints"]),
			},
		})
	}

	return &models.SlimTeam{
		ID:      t.TeamID,
		Abbr:    t.TeamTricode,
		Name:    t.TeamName,
		Players: players,
	}
}

// IsFinal reports whether the box score says the game is over
func IsFinal(g Game) bool {
	return strings.HasPrefix(strings.TrimSpace(g.GameStatusText), "Final")
}

// ScheduleUpdate is the slice of a schedule entry a box score can refresh
type ScheduleUpdate struct {
	Status     string
	Time       string
	HomeScore  int
	AwayScore  int
	HomeRecord string // empty when the feed carries no record
	AwayRecord string
	HomeTeamID int64
	AwayTeamID int64
}

// ScheduleUpdates derives the schedule fields a box score refreshes
func ScheduleUpdates(g Game) ScheduleUpdate {
	u := ScheduleUpdate{
		Status:     strings.TrimSpace(g.GameStatusText),
		Time:       trimClock(g.GameClock),
		HomeTeamID: g.HomeID(),
		AwayTeamID: g.AwayID(),
	}
	if t := g.HomeTeam; t != nil {
		u.HomeScore = SafeInt(t.Score)
		if t.Wins != nil || t.Losses != nil {
			u.HomeRecord = record(t.Wins, t.Losses)
		}
	}
	if t := g.AwayTeam; t != nil {
		u.AwayScore = SafeInt(t.Score)
		if t.Wins != nil || t.Losses != nil {
			u.AwayRecord = record(t.Wins, t.Losses)
		}
	}
	return u
}

// Apply copies the update onto a schedule entry. Records and team ids only overwrite when present.
func (u ScheduleUpdate) Apply(e *models.ScheduleEntry) {
	e.Status = u.Status
	e.Time = u.Time
	e.HomeScore = u.HomeScore
	e.AwayScore = u.AwayScore
	if u.HomeRecord != "" {
		e.HomeRecord = u.HomeRecord
	}
	if u.AwayRecord != "" {
		e.AwayRecord = u.AwayRecord
	}
	if u.HomeTeamID != 0 {
		e.HomeTeamID = u.HomeTeamID
	}
	if u.AwayTeamID != 0 {
		e.AwayTeamID = u.AwayTeamID
	}
}
