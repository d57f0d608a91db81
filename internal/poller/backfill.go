package poller

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/services/playbyplay-service/internal/boxscore"
	"github.com/fortuna/services/playbyplay-service/internal/playbyplay"
	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// BackfillOptions selects what a backfill rebuilds
type BackfillOptions struct {
	Date    string
	UseFeed bool // list games from the schedule feed even when a stored schedule exists
	DryRun  bool
}

// BackfillResult counts the games a backfill saw and the gamepacks it wrote
type BackfillResult struct {
	Games    int
	Uploaded int
}

// Backfill rebuilds the gamepack of every game on a date from full feed documents
func (s *Service) Backfill(ctx context.Context, opts BackfillOptions) (BackfillResult, error) {
	var result BackfillResult
	if s.artifacts == nil {
		return result, fmt.Errorf("backfill: artifact store not configured")
	}
	if _, ok := schedule.ParseStartET(opts.Date); !ok {
		return result, fmt.Errorf("backfill: invalid date %q", opts.Date)
	}

	identity := s.identities.Pick(s.rnd)
	games, err := s.backfillGames(ctx, opts, identity)
	if err != nil {
		return result, err
	}
	if len(games) == 0 {
		log.Printf("[poller] backfill: no games found for %s", opts.Date)
		return result, nil
	}
	ids := s.gameIDs(ctx, opts.Date, identity)

	log.Printf("[poller] backfill: %d games for %s", len(games), opts.Date)
	result.Games = len(games)
	for i, g := range games {
		nativeID := schedule.NativeID(ids[g.ID])
		if nativeID == "" {
			nativeID = schedule.NativeID(g.ID)
		}
		if nativeID == "" {
			log.Printf("[poller] backfill: no native id for %s, skipping", g.ID)
			continue
		}

		ok, err := s.backfillGame(ctx, g, nativeID, identity, opts.DryRun)
		if err != nil {
			log.Printf("[poller] backfill %s: %v", g.ID, err)
		} else if ok {
			result.Uploaded++
		}

		if i < len(games)-1 {
			pause := CalculateSleep(BudgetFromContext(ctx), i, len(games), s.rnd)
			if err := s.sleep(ctx, seconds(pause)); err != nil {
				return result, err
			}
		}
	}

	log.Printf("[poller] backfill: uploaded %d/%d gamepacks", result.Uploaded, result.Games)
	return result, nil
}

func (s *Service) backfillGames(ctx context.Context, opts BackfillOptions, identity string) ([]models.ScheduleEntry, error) {
	if !opts.UseFeed {
		games, err := s.artifacts.LoadSchedule(ctx, opts.Date)
		if err != nil {
			return nil, fmt.Errorf("backfill: loading schedule: %w", err)
		}
		if len(games) > 0 {
			return games, nil
		}
		log.Printf("[poller] backfill: schedule for %s missing, using schedule feed", opts.Date)
	}

	league := s.fetchLeague(ctx, identity)
	if league == nil {
		return nil, nil
	}
	return schedule.FeedByDate(league)[opts.Date], nil
}

// backfillGame needs both documents; no stored halves are merged in
func (s *Service) backfillGame(ctx context.Context, entry models.ScheduleEntry, nativeID, identity string, dryRun bool) (bool, error) {
	playDoc := decodePlay(s.fetcher.Fetch(ctx, s.urls.PlayByPlayURL(nativeID), "", identity), nativeID)
	boxDoc := decodeBox(s.fetcher.Fetch(ctx, s.urls.BoxScoreURL(nativeID), "", identity), nativeID)
	if playDoc == nil || boxDoc == nil {
		log.Printf("[poller] backfill: skip %s, missing play or box data", nativeID)
		return false, nil
	}

	actions := playDoc.Game.Actions
	if len(actions) == 0 || (boxDoc.Game.HomeTeam == nil && boxDoc.Game.AwayTeam == nil) {
		log.Printf("[poller] backfill: skip %s, empty actions or box payload", nativeID)
		return false, nil
	}

	home := pick(boxDoc.Game.HomeID(), pick(int64(playDoc.Game.HomeTeamID), entry.HomeTeamID))
	away := pick(boxDoc.Game.AwayID(), pick(int64(playDoc.Game.AwayTeamID), entry.AwayTeamID))

	flow := playbyplay.Transform(playbyplay.Input{
		GameID:        nativeID,
		Actions:       actions,
		AwayTeamID:    away,
		HomeTeamID:    home,
		IncludeEvents: s.cfg.IncludeEvents,
	})
	final := boxscore.IsFinal(boxDoc.Game) ||
		strings.HasPrefix(strings.TrimSpace(actions[len(actions)-1].Description), "Game End")

	publicID := entry.ID
	if publicID == "" {
		publicID = nativeID
	}
	if dryRun {
		log.Printf("[poller] backfill: dry run, would upload gamepack %s", publicID)
		return true, nil
	}

	pack := &models.Gamepack{
		Version:  models.GamepackVersion,
		ID:       nativeID,
		PublicID: publicID,
		Box:      boxscore.Slim(boxDoc.Game),
		Flow:     &flow,
	}
	if err := s.artifacts.SaveGamepack(ctx, pack, final); err != nil {
		return false, fmt.Errorf("uploading gamepack: %w", err)
	}
	return true, nil
}
