package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/fortuna/services/playbyplay-service/internal/boxscore"
	"github.com/fortuna/services/playbyplay-service/internal/feed"
	"github.com/fortuna/services/playbyplay-service/internal/playbyplay"
	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// gameUpdate is what one processed game changes on its schedule entry
type gameUpdate struct {
	playETag *string
	boxETag  *string
	box      *boxscore.ScheduleUpdate
}

// apply copies the update onto the entry and reports whether anything was set
func (u gameUpdate) apply(e *models.ScheduleEntry) bool {
	changed := false
	if u.playETag != nil {
		e.PlayETag = *u.playETag
		changed = true
	}
	if u.box != nil {
		u.box.Apply(e)
		changed = true
	}
	if u.boxETag != nil {
		e.BoxETag = *u.boxETag
		changed = true
	}
	return changed
}

// processGame fetches, transforms and stores one game. final is true when the
// box score says the game is over. Panics are turned into errors so one game
// cannot end the cycle.
func (s *Service) processGame(ctx context.Context, entry models.ScheduleEntry, mappedID, identity string) (final bool, update gameUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			final, update = false, gameUpdate{}
			err = fmt.Errorf("panic processing %s: %v", entry.ID, r)
		}
	}()

	publicID := entry.ID
	nativeID := schedule.NativeID(mappedID)
	if nativeID == "" {
		nativeID = schedule.NativeID(publicID)
	}
	if publicID == "" {
		publicID = nativeID
	}
	if nativeID == "" {
		log.Printf("[poller] missing native game id for %s, skipping", publicID)
		return false, update, nil
	}

	playRes := s.fetcher.Fetch(ctx, s.urls.PlayByPlayURL(nativeID), entry.PlayETag, identity)
	boxRes := s.fetcher.Fetch(ctx, s.urls.BoxScoreURL(nativeID), entry.BoxETag, identity)

	playDoc := decodePlay(playRes, nativeID)
	boxDoc := decodeBox(boxRes, nativeID)
	if playDoc == nil && boxDoc == nil {
		return false, update, nil
	}

	home, away := entry.HomeTeamID, entry.AwayTeamID
	if boxDoc != nil {
		home, away = pick(boxDoc.Game.HomeID(), home), pick(boxDoc.Game.AwayID(), away)
	}
	if playDoc != nil {
		home, away = pick(int64(playDoc.Game.HomeTeamID), home), pick(int64(playDoc.Game.AwayTeamID), away)
	}

	var flow *models.Flow
	playFinal := false
	if playDoc != nil {
		actions := playDoc.Game.Actions
		if n := len(actions); n > 0 {
			playFinal = strings.HasPrefix(strings.TrimSpace(actions[n-1].Description), "Game End")

			if home == 0 || away == 0 {
				if a, h, ok := playbyplay.InferTeams(actions); ok {
					away, home = pick(away, a), pick(home, h)
				}
			}
			if home != 0 && away != 0 {
				f := playbyplay.Transform(playbyplay.Input{
					GameID:        nativeID,
					Actions:       actions,
					AwayTeamID:    away,
					HomeTeamID:    home,
					IncludeEvents: s.cfg.IncludeEvents,
				})
				flow = &f
			}
		}
		etag := playRes.ETag
		update.playETag = &etag
	}

	var box *models.SlimBox
	if boxDoc != nil {
		final = boxscore.IsFinal(boxDoc.Game)
		box = boxscore.Slim(boxDoc.Game)
		su := boxscore.ScheduleUpdates(boxDoc.Game)
		update.box = &su
		etag := boxRes.ETag
		update.boxETag = &etag
	}

	if flow == nil && box == nil {
		return final, update, nil
	}

	if flow == nil || box == nil {
		stored, err := s.artifacts.LoadGamepack(ctx, publicID)
		if err != nil {
			log.Printf("[poller] loading stored gamepack %s: %v", publicID, err)
		}
		if stored != nil {
			if flow == nil {
				flow = stored.Flow
			}
			if box == nil {
				box = stored.Box
			}
		}
	}

	if flow == nil || box == nil {
		log.Printf("[poller] skipping gamepack upload for %s, missing data", publicID)
		return final, update, nil
	}

	pack := &models.Gamepack{
		Version:  models.GamepackVersion,
		ID:       nativeID,
		PublicID: publicID,
		Box:      box,
		Flow:     flow,
	}
	if err := s.artifacts.SaveGamepack(ctx, pack, final || playFinal); err != nil {
		return false, gameUpdate{}, fmt.Errorf("uploading gamepack %s: %w", publicID, err)
	}
	return final, update, nil
}

// pick returns primary unless it is zero
func pick(primary, fallback int64) int64 {
	if primary != 0 {
		return primary
	}
	return fallback
}

func decodePlay(res feed.Result, gameID string) *playbyplay.Feed {
	if !res.Changed() {
		return nil
	}
	var doc playbyplay.Feed
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		log.Printf("[poller] malformed play-by-play for %s: %v", gameID, err)
		return nil
	}
	return &doc
}

func decodeBox(res feed.Result, gameID string) *boxscore.Feed {
	if !res.Changed() {
		return nil
	}
	var doc boxscore.Feed
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		log.Printf("[poller] malformed box score for %s: %v", gameID, err)
		return nil
	}
	return &doc
}
