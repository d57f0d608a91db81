package schedule

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // league times are Eastern regardless of host zone data

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Eastern is the league's home time zone
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Printf("[schedule] could not load America/New_York, using fixed -05:00: %v", err)
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

var (
	terminalPrefixes  = []string{"final", "postponed", "cancelled", "canceled", "ppd"}
	cancelledPrefixes = []string{"postponed", "cancelled", "canceled", "ppd"}
	pregamePrefixes   = []string{"scheduled", "pre", "tbd"}
	liveTokens        = []string{"qtr", "quarter", "half", "halftime", "in progress", "end of"}
)

const startLayout = "2006-01-02T15:04:05"

// Slug lowercases a team code and drops anything that is not a letter or digit
func Slug(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PublicID builds "date-away-home", falling back to the native id when any part is missing
func PublicID(date, away, home, fallback string) string {
	a, h := Slug(away), Slug(home)
	if date != "" && a != "" && h != "" {
		return fmt.Sprintf("%s-%s-%s", date, a, h)
	}
	return fallback
}

// NativeID returns the value when it is an all-digit feed game id, otherwise ""
func NativeID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return value
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status means no more updates are coming
func IsTerminal(status string) bool {
	return hasAnyPrefix(normalizeStatus(status), terminalPrefixes)
}

// IsCancelled reports whether the status means the game will not be played as scheduled
func IsCancelled(status string) bool {
	return hasAnyPrefix(normalizeStatus(status), cancelledPrefixes)
}

// IndicatesLive reports whether the entry's status text describes a game in progress
func IndicatesLive(e models.ScheduleEntry) bool {
	status := normalizeStatus(e.Status)
	if status == "" || IsTerminal(status) {
		return false
	}
	if hasAnyPrefix(status, pregamePrefixes) || strings.Contains(status, "tbd") {
		return false
	}
	if strings.HasPrefix(status, "q") && strings.ContainsAny(status, "0123456789") {
		return true
	}
	if strings.Contains(status, ":") && (strings.Contains(status, " am") || strings.Contains(status, " pm") ||
		strings.HasSuffix(status, "am") || strings.HasSuffix(status, "pm") || strings.Contains(status, " et")) {
		return false
	}
	if strings.TrimSpace(e.Time) != "" {
		return true
	}
	for _, token := range liveTokens {
		if strings.Contains(status, token) {
			return true
		}
	}
	if strings.Contains(status, "overtime") || status == "ot" || strings.Contains(status, " ot") {
		return true
	}
	if strings.HasSuffix(status, "ot") && NativeID(strings.TrimSuffix(status, "ot")) != "" {
		return true
	}
	return false
}

// ParseStartET parses a start time as Eastern. A trailing "Z" is ignored
// because the feed labels Eastern times that way.
func ParseStartET(value string) (time.Time, bool) {
	ts := strings.TrimSuffix(strings.TrimSpace(value), "Z")
	if ts == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.In(Eastern), true
	}
	return parseNaive(ts, Eastern)
}

// ParseStartUTC parses a start time as UTC unless it carries an explicit offset
func ParseStartUTC(value string) (time.Time, bool) {
	ts := strings.TrimSpace(value)
	if ts == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC(), true
	}
	return parseNaive(strings.TrimSuffix(ts, "Z"), time.UTC)
}

func parseNaive(ts string, loc *time.Location) (time.Time, bool) {
	for _, layout := range []string{startLayout, "2006-01-02T15:04:05.000", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HasStarted reports whether the game is live or its start time has passed
func HasStarted(e models.ScheduleEntry, now time.Time) bool {
	if IndicatesLive(e) {
		return true
	}
	start, ok := ParseStartET(e.StartTime)
	if !ok {
		return false
	}
	return !now.Before(start)
}

// LeagueDate returns the Eastern date for now. Before 4 AM Eastern it is still the previous day.
func LeagueDate(now time.Time) string {
	et := now.In(Eastern)
	if et.Hour() < 4 {
		et = et.AddDate(0, 0, -1)
	}
	return et.Format("2006-01-02")
}

// EarliestStart returns the first start time across entries, in UTC
func EarliestStart(entries []models.ScheduleEntry) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range entries {
		start, ok := ParseStartET(e.StartTime)
		if !ok {
			if e.StartTime != "" {
				log.Printf("[schedule] unparseable start time %q for %s", e.StartTime, e.ID)
			}
			continue
		}
		if !found || start.Before(earliest) {
			earliest = start
			found = true
		}
	}
	return earliest.UTC(), found
}
