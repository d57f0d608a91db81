package schedule

import (
	"reflect"
	"sort"
	"strings"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Reconcile merges the stored schedule for date with the feed's view of it.
// The feed entry is the base and the stored entry overlays it field by field,
// except that a cancelled or postponed status from the feed always wins.
// A date the feed has no games for is left as stored.
func Reconcile(existing, feed []models.ScheduleEntry, date string) ([]models.ScheduleEntry, bool) {
	current := Normalize(existing)
	if len(feed) == 0 {
		return current, false
	}

	stored := make(map[string]models.ScheduleEntry, len(existing))
	for _, e := range existing {
		if e.ID != "" {
			stored[e.ID] = e
		}
	}

	merged := make([]models.ScheduleEntry, 0, len(feed))
	for _, f := range feed {
		entry := f
		if e, ok := stored[f.ID]; ok {
			entry = overlay(f, e)
			if IsCancelled(f.Status) {
				entry.Status = f.Status
			}
		}
		entry.Date = date
		merged = append(merged, entry)
	}

	merged = Normalize(merged)
	return merged, !Equal(current, merged)
}

// Normalize drops entries without an id, keeps the last entry per id, and sorts by (starttime, id)
func Normalize(entries []models.ScheduleEntry) []models.ScheduleEntry {
	index := make(map[string]int, len(entries))
	out := make([]models.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Equal reports deep structural equality of two normalized schedules
func Equal(a, b []models.ScheduleEntry) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// overlay copies every non-empty field of top onto base
func overlay(base, top models.ScheduleEntry) models.ScheduleEntry {
	str := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	str(&base.ID, top.ID)
	str(&base.Date, top.Date)
	str(&base.StartTime, top.StartTime)
	str(&base.HomeTeam, top.HomeTeam)
	str(&base.AwayTeam, top.AwayTeam)
	str(&base.Status, top.Status)
	str(&base.Time, top.Time)
	str(&base.HomeRecord, top.HomeRecord)
	str(&base.AwayRecord, top.AwayRecord)
	str(&base.PlayETag, top.PlayETag)
	str(&base.BoxETag, top.BoxETag)
	if top.HomeScore != 0 {
		base.HomeScore = top.HomeScore
	}
	if top.AwayScore != 0 {
		base.AwayScore = top.AwayScore
	}
	if top.HomeTeamID != 0 {
		base.HomeTeamID = top.HomeTeamID
	}
	if top.AwayTeamID != 0 {
		base.AwayTeamID = top.AwayTeamID
	}
	return base
}
