package poller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/schedule"
)

// manage reconciles recent schedules and arms the kickoff for today's first tip-off
func (s *Service) manage(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("manager: %w", err)
	}

	s.reconcileRecent(ctx)

	today := s.today()
	log.Printf("[poller] manager: checking games for %s", today)

	games, err := s.artifacts.LoadSchedule(ctx, today)
	if err != nil {
		log.Printf("[poller] manager: loading schedule: %v", err)
		games = nil
	}
	if len(games) == 0 {
		log.Printf("[poller] manager: no games scheduled for %s", today)
		return nil
	}

	start, ok := schedule.EarliestStart(games)
	if !ok {
		log.Printf("[poller] manager: games have no valid start time, enabling now")
		return s.kickoff(ctx)
	}

	if !start.After(s.now()) {
		log.Printf("[poller] manager: first tip-off %s already passed, enabling now", start.Format("15:04 MST"))
		return s.kickoff(ctx)
	}

	if s.cfg.KickoffTrigger == "" {
		log.Printf("[poller] manager: no kickoff trigger configured, enabling now")
		return s.kickoff(ctx)
	}

	if err := s.scheduleKickoff(ctx, start); err != nil {
		log.Printf("[poller] manager: scheduling kickoff failed, enabling now: %v", err)
		return s.kickoff(ctx)
	}
	log.Printf("[poller] manager: kickoff armed for %s", start.In(schedule.Eastern).Format("2006-01-02 15:04 MST"))
	return nil
}

// scheduleKickoff replaces any pending kickoff with one at the given time
func (s *Service) scheduleKickoff(ctx context.Context, at time.Time) error {
	if err := s.triggers.CancelScheduled(ctx, s.cfg.KickoffTrigger); err != nil {
		log.Printf("[poller] manager: clearing previous kickoff: %v", err)
	}
	return s.triggers.ScheduleOnce(ctx, s.cfg.KickoffTrigger, at, EncodeTask(KickoffTask{}))
}

// kickoff reconciles best-effort, then switches the poller on. Failing to enable is fatal.
func (s *Service) kickoff(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return fmt.Errorf("kickoff: %w", err)
	}

	log.Printf("[poller] kickoff: reconciling schedule before enabling poller")
	s.reconcileRecent(ctx)

	if err := s.triggers.Enable(ctx, s.cfg.PollerTrigger); err != nil {
		return fmt.Errorf("kickoff: enabling %s: %w", s.cfg.PollerTrigger, err)
	}
	log.Printf("[poller] kickoff: polling has begun")
	return nil
}

// disable switches the poller off. Failure is logged; the next cycle will try again.
func (s *Service) disable(ctx context.Context) {
	if err := s.triggers.Disable(ctx, s.cfg.PollerTrigger); err != nil {
		log.Printf("[poller] failed to disable %s: %v", s.cfg.PollerTrigger, err)
		return
	}
	log.Printf("[poller] disabled %s", s.cfg.PollerTrigger)
}
