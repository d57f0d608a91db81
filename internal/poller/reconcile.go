package poller

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// fetchLeague downloads the season schedule. nil means the feed was unavailable.
func (s *Service) fetchLeague(ctx context.Context, identity string) *schedule.League {
	res := s.fetcher.Fetch(ctx, s.urls.ScheduleURL(), "", identity)
	if !res.Changed() {
		return nil
	}
	var doc schedule.Feed
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		log.Printf("[poller] decoding schedule feed: %v", err)
		return nil
	}
	if doc.LeagueSchedule == nil || len(doc.LeagueSchedule.GameDates) == 0 {
		log.Printf("[poller] schedule feed has no game dates")
		return nil
	}
	return doc.LeagueSchedule
}

// reconcileRecent merges the feed into the stored schedules for today and the
// preceding days and refreshes each date's id map. Failures are logged only.
func (s *Service) reconcileRecent(ctx context.Context) {
	days := s.cfg.ReconcileDays
	if days <= 0 {
		return
	}

	today, err := time.ParseInLocation("2006-01-02", s.today(), schedule.Eastern)
	if err != nil {
		log.Printf("[poller] reconcile: invalid league date: %v", err)
		return
	}

	league := s.fetchLeague(ctx, s.identities.Pick(s.rnd))
	if league == nil {
		log.Printf("[poller] reconcile: schedule feed unavailable, skipping")
		return
	}
	byDate := schedule.FeedByDate(league)
	if len(byDate) == 0 {
		log.Printf("[poller] reconcile: schedule feed empty, skipping")
		return
	}

	updated := 0
	for offset := 0; offset < days; offset++ {
		date := today.AddDate(0, 0, -offset).Format("2006-01-02")
		changed, err := s.reconcileDate(ctx, date, byDate[date])
		if err != nil {
			log.Printf("[poller] reconcile %s: %v", date, err)
		} else if changed {
			updated++
		}

		if err := s.artifacts.SaveGameIDMap(ctx, date, schedule.GameIDMap(league, date)); err != nil {
			log.Printf("[poller] reconcile %s: saving id map: %v", date, err)
		}
	}

	if updated > 0 {
		log.Printf("[poller] reconcile: updated %d schedule file(s)", updated)
	}
}

func (s *Service) reconcileDate(ctx context.Context, date string, feed []models.ScheduleEntry) (bool, error) {
	existing, err := s.artifacts.LoadSchedule(ctx, date)
	if err != nil {
		return false, err
	}
	merged, changed := schedule.Reconcile(existing, feed, date)
	if !changed {
		return false, nil
	}
	if err := s.artifacts.SaveSchedule(ctx, date, merged); err != nil {
		return false, err
	}
	return true, nil
}

// gameIDs loads the id map for date, building and storing it from the feed when missing
func (s *Service) gameIDs(ctx context.Context, date, identity string) models.GameIDMap {
	ids, found, err := s.artifacts.LoadGameIDMap(ctx, date)
	if err != nil {
		log.Printf("[poller] loading id map for %s: %v", date, err)
	}
	if found {
		return ids
	}

	league := s.fetchLeague(ctx, identity)
	if league == nil {
		return models.GameIDMap{}
	}
	ids = schedule.GameIDMap(league, date)
	if err := s.artifacts.SaveGameIDMap(ctx, date, ids); err != nil {
		log.Printf("[poller] saving id map for %s: %v", date, err)
	}
	return ids
}
