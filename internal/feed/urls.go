package feed

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the league's public JSON CDN
const DefaultBaseURL = "https://cdn.nba.com/static/json"

// URLs builds feed endpoint addresses under a base URL
type URLs struct {
	Base string
}

func (u URLs) base() string {
	if u.Base == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u.Base, "/")
}

// PlayByPlayURL is the play-by-play document for a native game id
func (u URLs) PlayByPlayURL(gameID string) string {
	return fmt.Sprintf("%s/liveData/playbyplay/playbyplay_%s.json", u.base(), gameID)
}

// BoxScoreURL is the box score document for a native game id
func (u URLs) BoxScoreURL(gameID string) string {
	return fmt.Sprintf("%s/liveData/boxscore/boxscore_%s.json", u.base(), gameID)
}

// ScheduleURL is the season schedule document
func (u URLs) ScheduleURL() string {
	return u.base() + "/staticData/scheduleLeagueV2_1.json"
}

// ScoreboardURL is today's scoreboard document
func (u URLs) ScoreboardURL() string {
	return u.base() + "/liveData/scoreboard/todaysScoreboard_00.json"
}
