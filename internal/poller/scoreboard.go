package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/fortuna/services/playbyplay-service/internal/schedule"
)

// refreshScoreboard reconciles today's scoreboard into the stored schedules
func (s *Service) refreshScoreboard(ctx context.Context) error {
	if s.artifacts == nil {
		return fmt.Errorf("scoreboard: artifact store not configured")
	}

	res := s.fetcher.Fetch(ctx, s.urls.ScoreboardURL(), "", s.identities.Pick(s.rnd))
	if !res.Changed() {
		log.Printf("[poller] scoreboard unavailable, skipping")
		return nil
	}

	var doc schedule.ScoreboardFeed
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		log.Printf("[poller] decoding scoreboard: %v", err)
		return nil
	}

	league := schedule.ScoreboardLeague(doc)
	for date, entries := range schedule.FeedByDate(league) {
		changed, err := s.reconcileDate(ctx, date, entries)
		if err != nil {
			log.Printf("[poller] scoreboard %s: %v", date, err)
			continue
		}
		if changed {
			log.Printf("[poller] scoreboard updated schedule for %s (%d games)", date, len(entries))
		}
		if err := s.artifacts.SaveGameIDMap(ctx, date, schedule.GameIDMap(league, date)); err != nil {
			log.Printf("[poller] scoreboard %s: saving id map: %v", date, err)
		}
	}
	return nil
}
