package playbyplay

import "github.com/fortuna/services/playbyplay-service/pkg/models"

// scoreTimeline records one point every time either running score changes.
// Actions without a score are skipped; both scores start at "0".
func scoreTimeline(actions []RawAction) []models.ScorePoint {
	points := []models.ScorePoint{}
	away, home := "0", "0"
	for _, a := range actions {
		if a.ScoreAway == "" {
			continue
		}
		nextAway, nextHome := string(a.ScoreAway), string(a.ScoreHome)
		if nextAway == away && nextHome == home {
			continue
		}
		points = append(points, models.ScorePoint{
			Period:    int(a.Period),
			Clock:     NormalizeClock(a.Clock),
			AwayScore: nextAway,
			HomeScore: nextHome,
		})
		away, home = nextAway, nextHome
	}
	return points
}
