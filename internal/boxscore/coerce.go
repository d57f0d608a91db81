package boxscore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SafeInt coerces a loosely typed feed value to an int: integer parse first,
// float parse second, zero otherwise
func SafeInt(v interface{}) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return int(f)
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}

// NormalizeMinutes converts "PT25M01.00S" into "25:01". Values already in
// MM:SS form pass through; anything else is "00:00".
func NormalizeMinutes(v interface{}) string {
	raw, ok := v.(string)
	if !ok {
		return "00:00"
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "00:00"
	}

	if strings.HasPrefix(raw, "PT") && strings.HasSuffix(raw, "S") {
		body := raw[2 : len(raw)-1]
		mins, secs := 0, 0
		if m, s, found := strings.Cut(body, "M"); found {
			mins = SafeInt(m)
			secs = SafeInt(s)
		} else {
			secs = SafeInt(body)
		}
		return fmt.Sprintf("%02d:%02d", mins, secs)
	}

	if strings.Contains(raw, ":") {
		return raw
	}
	return "00:00"
}

// trimClock renders the game clock for the schedule's time field
func trimClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return ""
	}
	if strings.HasPrefix(clock, "PT") {
		return NormalizeMinutes(clock)
	}
	return clock
}

func record(wins, losses interface{}) string {
	return fmt.Sprintf("%d-%d", SafeInt(wins), SafeInt(losses))
}
