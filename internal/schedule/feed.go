package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/boxscore"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Feed is the season schedule document
type Feed struct {
	LeagueSchedule *League `json:"leagueSchedule"`
}

// League holds the season's games grouped by date
type League struct {
	GameDates []GameDate `json:"gameDates"`
}

// GameDate is one date bucket in the season schedule
type GameDate struct {
	GameDate string     `json:"gameDate"`
	Games    []FeedGame `json:"games"`
}

// ScoreboardFeed is today's scoreboard document
type ScoreboardFeed struct {
	Scoreboard struct {
		GameDate string     `json:"gameDate"`
		Games    []FeedGame `json:"games"`
	} `json:"scoreboard"`
}

// FeedGame is a game as listed by the schedule or scoreboard feeds
type FeedGame struct {
	GameID          string   `json:"gameId"`
	GameStatus      int      `json:"gameStatus"`
	GameStatusText  string   `json:"gameStatusText"`
	GameClock       string   `json:"gameClock"`
	GameDate        string   `json:"gameDate"`
	GameDateTimeEst string   `json:"gameDateTimeEst"`
	GameDateEst     string   `json:"gameDateEst"`
	GameEt          string   `json:"gameEt"`
	GameDateTimeUTC string   `json:"gameDateTimeUTC"`
	GameDateUTC     string   `json:"gameDateUTC"`
	GameTimeUTC     string   `json:"gameTimeUTC"`
	HomeTeamID      int64    `json:"homeTeamId"`
	AwayTeamID      int64    `json:"awayTeamId"`
	HomeTeam        FeedTeam `json:"homeTeam"`
	AwayTeam        FeedTeam `json:"awayTeam"`
}

// FeedTeam is one side of a feed game
type FeedTeam struct {
	TeamID      int64       `json:"teamId"`
	TeamTricode string      `json:"teamTricode"`
	Score       interface{} `json:"score"`
	Wins        interface{} `json:"wins"`
	Losses      interface{} `json:"losses"`
}

var feedDateLayouts = []string{"01/02/2006 15:04:05", "01/02/2006", "2006-01-02 15:04:05", "2006-01-02", "2006-01-02T15:04:05Z"}

// ExtractFeedStart returns a naive Eastern start time for a feed game. It prefers
// Eastern-labelled fields, then UTC fields converted to Eastern, then the bare date at midnight.
func ExtractFeedStart(g FeedGame, dateBucket string) string {
	for _, v := range []string{g.GameDateTimeEst, g.GameDateEst, g.GameEt} {
		if t, ok := ParseStartET(v); ok {
			return t.Format(startLayout)
		}
	}
	for _, v := range []string{g.GameDateTimeUTC, g.GameDateUTC, g.GameTimeUTC} {
		if t, ok := ParseStartUTC(v); ok {
			return t.In(Eastern).Format(startLayout)
		}
	}
	if d := extractFeedDate(dateBucket); d != "" {
		return d + "T00:00:00"
	}
	if d := extractFeedDate(g.GameDate); d != "" {
		return d + "T00:00:00"
	}
	return ""
}

func extractFeedDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// feedDate resolves the league date for a feed game from its start time or its date bucket
func feedDate(start, dateBucket string) string {
	if date, _, ok := strings.Cut(start, "T"); ok && date != "" {
		return date
	}
	return extractFeedDate(dateBucket)
}

// EntryFromFeed builds a schedule entry from a feed game
func EntryFromFeed(g FeedGame, date, start string) models.ScheduleEntry {
	status := strings.TrimSpace(g.GameStatusText)
	if status == "" && g.GameStatus == 1 {
		status = "Scheduled"
	}

	e := models.ScheduleEntry{
		ID:         PublicID(date, g.AwayTeam.TeamTricode, g.HomeTeam.TeamTricode, g.GameID),
		Date:       date,
		StartTime:  start,
		HomeTeam:   g.HomeTeam.TeamTricode,
		AwayTeam:   g.AwayTeam.TeamTricode,
		HomeScore:  boxscore.SafeInt(g.HomeTeam.Score),
		AwayScore:  boxscore.SafeInt(g.AwayTeam.Score),
		Status:     status,
		Time:       TrimClock(g.GameClock),
		HomeRecord: record(g.HomeTeam),
		AwayRecord: record(g.AwayTeam),
		HomeTeamID: g.HomeTeam.TeamID,
		AwayTeamID: g.AwayTeam.TeamID,
	}
	if e.HomeTeamID == 0 {
		e.HomeTeamID = g.HomeTeamID
	}
	if e.AwayTeamID == 0 {
		e.AwayTeamID = g.AwayTeamID
	}
	return e
}

func record(t FeedTeam) string {
	return fmt.Sprintf("%d-%d", boxscore.SafeInt(t.Wins), boxscore.SafeInt(t.Losses))
}

// TrimClock renders a feed clock as MM:SS for the schedule's time field
func TrimClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if strings.HasPrefix(clock, "PT") {
		return boxscore.NormalizeMinutes(clock)
	}
	return clock
}

// FeedByDate groups every feed game into schedule entries keyed by league date, then publicId
func FeedByDate(league *League) map[string][]models.ScheduleEntry {
	byDate := make(map[string][]models.ScheduleEntry)
	if league == nil {
		return byDate
	}
	for _, gd := range league.GameDates {
		for _, g := range gd.Games {
			if g.GameID == "" {
				continue
			}
			start := ExtractFeedStart(g, gd.GameDate)
			date := feedDate(start, gd.GameDate)
			if date == "" {
				continue
			}
			byDate[date] = append(byDate[date], EntryFromFeed(g, date, start))
		}
	}
	return byDate
}

// GameIDMap maps publicId to native game id for every feed game on date
func GameIDMap(league *League, date string) models.GameIDMap {
	ids := models.GameIDMap{}
	if league == nil || date == "" {
		return ids
	}
	for _, gd := range league.GameDates {
		for _, g := range gd.Games {
			if g.GameID == "" {
				continue
			}
			start := ExtractFeedStart(g, gd.GameDate)
			if feedDate(start, gd.GameDate) != date {
				continue
			}
			ids[PublicID(date, g.AwayTeam.TeamTricode, g.HomeTeam.TeamTricode, g.GameID)] = g.GameID
		}
	}
	return ids
}

// ScoreboardLeague adapts today's scoreboard into the season schedule shape
func ScoreboardLeague(sb ScoreboardFeed) *League {
	return &League{GameDates: []GameDate{{
		GameDate: sb.Scoreboard.GameDate,
		Games:    sb.Scoreboard.Games,
	}}}
}
