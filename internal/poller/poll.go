package poller

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// poll runs one cycle over today's started, unfinished games
func (s *Service) poll(ctx context.Context, budget Budget) error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	today := s.today()
	games, err := s.artifacts.LoadSchedule(ctx, today)
	if err != nil {
		return fmt.Errorf("poller: loading schedule for %s: %w", today, err)
	}
	if len(games) == 0 {
		log.Printf("[poller] no games found for %s, disabling", today)
		s.disable(ctx)
		return nil
	}

	// One identity for the whole cycle
	identity := s.identities.Pick(s.rnd)
	ids := s.gameIDs(ctx, today, identity)

	now := s.now()
	remaining := 0
	var active []int
	for i, g := range games {
		if schedule.IsTerminal(g.Status) {
			continue
		}
		remaining++
		if schedule.HasStarted(g, now) {
			active = append(active, i)
		}
	}

	if remaining == 0 {
		log.Printf("[poller] all games for %s are final, disabling", today)
		if err := s.artifacts.SaveSchedule(ctx, today, games); err != nil {
			log.Printf("[poller] uploading final schedule: %v", err)
		}
		s.disable(ctx)
		return nil
	}

	if len(active) == 0 {
		log.Printf("[poller] no active games yet, keeping poller enabled")
		return nil
	}

	s.rnd.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })

	dirty := false
	for n, idx := range active {
		entry := &games[idx]

		final, update, err := s.processGame(ctx, *entry, ids[entry.ID], identity)
		if err != nil {
			log.Printf("[poller] error on game %s: %v", entry.ID, err)
		} else {
			if final {
				log.Printf("[poller] game %s went final", entry.ID)
				if _, err := s.artifacts.AddToManifest(ctx, entry.ID); err != nil {
					log.Printf("[poller] updating manifest for %s: %v", entry.ID, err)
				}
			}
			if update.apply(entry) {
				dirty = true
			}
		}

		if n == len(active)-1 {
			break
		}
		pause := CalculateSleep(budget, n, len(active), s.rnd)
		if pause <= 0 {
			continue
		}
		if err := s.sleep(ctx, seconds(pause)); err != nil {
			log.Printf("[poller] cycle interrupted after %d of %d games: %v", n+1, len(active), err)
			break
		}
	}

	if dirty {
		log.Printf("[poller] updates found, refreshing schedule")
		if err := s.artifacts.SaveSchedule(ctx, today, games); err != nil {
			log.Printf("[poller] uploading schedule: %v", err)
		}
	}

	state := InitStateFor(today, games)
	if err := s.artifacts.SaveInitState(ctx, state); err != nil {
		log.Printf("[poller] uploading init state: %v", err)
	} else {
		log.Printf("[poller] init state -> date %s, game %s", state.Date, state.GameID)
	}
	return nil
}

// InitStateFor picks the game clients should land on: the first live game, else the
// first game when all are final, else the most recent final game, else the first game.
func InitStateFor(date string, games []models.ScheduleEntry) models.InitState {
	state := models.InitState{Date: date}
	if len(games) == 0 {
		return state
	}

	var final []models.ScheduleEntry
	for _, g := range games {
		if schedule.IndicatesLive(g) {
			state.GameID = g.ID
			return state
		}
		if schedule.IsTerminal(g.Status) {
			final = append(final, g)
		}
	}

	switch {
	case len(final) == len(games):
		state.GameID = byStart(games)[0].ID
	case len(final) > 0:
		state.GameID = final[len(final)-1].ID
	default:
		state.GameID = byStart(games)[0].ID
	}
	return state
}

func byStart(games []models.ScheduleEntry) []models.ScheduleEntry {
	sorted := make([]models.ScheduleEntry, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })
	return sorted
}
