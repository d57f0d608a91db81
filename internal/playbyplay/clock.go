package playbyplay

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	regulationStart = "PT12M00.00S"
	overtimeStart   = "PT05M00.00S"
	periodEnd       = "PT00M00.00S"
)

var isoClockRe = regexp.MustCompile(`^PT(\d+)M(\d+(?:\.\d+)?)S$`)

// ClockSeconds returns the remaining game clock in seconds.
// Accepts PT##M##.##S, PT##M##S, MM:SS(.ss) and compact MMSS digits. Anything else reads as zero.
func ClockSeconds(clock string) float64 {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0
	}

	if m := isoClockRe.FindStringSubmatch(clock); m != nil {
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.ParseFloat(m[2], 64)
		return float64(mins)*60 + secs
	}

	if strings.Contains(clock, ":") {
		parts := strings.SplitN(clock, ":", 2)
		mins, err := strconv.Atoi(parts[0])
		if err != nil || mins < 0 {
			return 0
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || secs < 0 {
			return 0
		}
		return float64(mins)*60 + secs
	}

	if isDigits(clock) && len(clock) <= 4 {
		n, _ := strconv.Atoi(clock)
		if len(clock) <= 2 {
			return float64(n)
		}
		return float64(n/100)*60 + float64(n%100)
	}

	return 0
}

// NormalizeClock renders any accepted clock form as PT##M##.##S
func NormalizeClock(clock string) string {
	return formatClock(ClockSeconds(clock))
}

func formatClock(seconds float64) string {
	cs := int(math.Round(seconds * 100))
	if cs < 0 {
		cs = 0
	}
	mins := cs / 6000
	rem := cs % 6000
	return fmt.Sprintf("PT%02dM%02d.%02dS", mins, rem/100, rem%100)
}

// periodStart is the nominal starting clock for a period
func periodStart(period int) string {
	if period > 4 {
		return overtimeStart
	}
	return regulationStart
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
