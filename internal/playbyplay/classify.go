package playbyplay

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Category is the coarse kind of a play-by-play action
type Category string

const (
	CategoryShot         Category = "shot"
	CategoryFreeThrow    Category = "freethrow"
	CategoryRebound      Category = "rebound"
	CategoryTurnover     Category = "turnover"
	CategoryFoul         Category = "foul"
	CategoryJumpBall     Category = "jumpball"
	CategorySubstitution Category = "substitution"
	CategoryAssist       Category = "assist"
	CategoryBlock        Category = "block"
	CategorySteal        Category = "steal"
	CategoryViolation    Category = "violation"
	CategoryTimeout      Category = "timeout"
	CategoryPeriod       Category = "period"
	CategoryOther        Category = "other"
)

// Classification is what Classify learned about an action
type Classification struct {
	Category  Category
	Made      bool
	Points    int
	Distance  int    // feet, zero when unknown
	Qualifier string // rebound side, turnover reason, foul kind, sub direction
}

var distanceRe = regexp.MustCompile(`(\d+)'`)

// Classify maps an action onto a Category using the action type first and the
// description keywords second
func Classify(a RawAction) Classification {
	typ := strings.ToLower(strings.TrimSpace(a.ActionType))
	desc := a.Description
	qualifier := strings.ToLower(strings.TrimSpace(a.SubType))
	if qualifier == "" || qualifier == "unknown" {
		qualifier = strings.ToLower(strings.TrimSpace(a.Descriptor))
	}

	switch typ {
	case "2pt", "3pt", "made shot", "missed shot", "fieldgoal":
		return classifyShot(a, typ)
	case "freethrow", "free throw":
		return Classification{Category: CategoryFreeThrow, Made: freeThrowMade(a), Points: 1}
	case "rebound":
		return Classification{Category: CategoryRebound, Qualifier: qualifier}
	case "turnover":
		return Classification{Category: CategoryTurnover, Qualifier: qualifier}
	case "foul":
		return Classification{Category: CategoryFoul, Qualifier: qualifier}
	case "jumpball", "jump ball":
		return Classification{Category: CategoryJumpBall}
	case "substitution":
		return Classification{Category: CategorySubstitution, Qualifier: subDirection(desc)}
	case "assist":
		return Classification{Category: CategoryAssist}
	case "block":
		return Classification{Category: CategoryBlock}
	case "steal":
		return Classification{Category: CategorySteal}
	case "violation":
		return Classification{Category: CategoryViolation, Qualifier: qualifier}
	case "timeout":
		return Classification{Category: CategoryTimeout, Qualifier: qualifier}
	case "period", "game", "start period", "end period":
		return Classification{Category: CategoryPeriod, Qualifier: periodQualifier(typ, a)}
	}

	upper := strings.ToUpper(desc)
	switch {
	case strings.Contains(upper, "FREE THROW"):
		return Classification{Category: CategoryFreeThrow, Made: freeThrowMade(a), Points: 1}
	case strings.Contains(upper, "MISS") || strings.Contains(upper, "PTS)"):
		return classifyShot(a, typ)
	case strings.Contains(upper, "REBOUND"):
		return Classification{Category: CategoryRebound, Qualifier: qualifier}
	case strings.Contains(upper, "TURNOVER") || strings.Contains(upper, "TO)"):
		return Classification{Category: CategoryTurnover, Qualifier: qualifier}
	case strings.Contains(upper, "FOUL") || strings.Contains(upper, "PF)"):
		return Classification{Category: CategoryFoul, Qualifier: qualifier}
	case strings.Contains(upper, "JUMP BALL"):
		return Classification{Category: CategoryJumpBall}
	case strings.Contains(upper, "BLK") || strings.Contains(upper, "BLOCK"):
		return Classification{Category: CategoryBlock}
	case strings.Contains(upper, "STL") || strings.Contains(upper, "STEAL"):
		return Classification{Category: CategorySteal}
	case strings.Contains(upper, "VIOLATION"):
		return Classification{Category: CategoryViolation, Qualifier: qualifier}
	case strings.Contains(upper, "TIMEOUT"):
		return Classification{Category: CategoryTimeout, Qualifier: qualifier}
	}
	return Classification{Category: CategoryOther}
}

func classifyShot(a RawAction, typ string) Classification {
	upper := strings.ToUpper(a.Description)
	c := Classification{Category: CategoryShot, Points: 2}
	if typ == "3pt" || strings.Contains(upper, "3PT") {
		c.Points = 3
	}

	switch {
	case strings.EqualFold(a.ShotResult, "Made"), typ == "made shot":
		c.Made = true
	case strings.EqualFold(a.ShotResult, "Missed"), typ == "missed shot":
		c.Made = false
	default:
		c.Made = !strings.Contains(upper, "MISS")
	}

	if a.ShotDistance > 0 {
		c.Distance = int(math.Round(float64(a.ShotDistance)))
	} else if m := distanceRe.FindStringSubmatch(a.Description); m != nil {
		c.Distance, _ = strconv.Atoi(m[1])
	}
	return c
}

func freeThrowMade(a RawAction) bool {
	switch {
	case strings.EqualFold(a.ShotResult, "Made"):
		return true
	case strings.EqualFold(a.ShotResult, "Missed"):
		return false
	}
	return !strings.Contains(strings.ToUpper(a.Description), "MISS")
}

func subDirection(desc string) string {
	switch {
	case strings.Contains(desc, "out:"):
		return "out"
	case strings.Contains(desc, "in:"):
		return "in"
	}
	return ""
}

func periodQualifier(typ string, a RawAction) string {
	sub := strings.ToLower(a.SubType)
	desc := strings.ToLower(a.Description)
	switch {
	case typ == "game" || strings.Contains(desc, "game end"):
		return "game end"
	case sub == "start" || strings.Contains(desc, "start"):
		return "start"
	case sub == "end" || strings.Contains(desc, "end"):
		return "end"
	}
	return ""
}

// Text renders a short phrase for display
func (c Classification) Text() string {
	switch c.Category {
	case CategoryShot:
		text := fmt.Sprintf("%s %dPT", madeWord(c.Made), c.Points)
		if c.Distance > 0 {
			text = fmt.Sprintf("%s %dft", text, c.Distance)
		}
		return text
	case CategoryFreeThrow:
		return madeWord(c.Made) + " FT"
	case CategoryRebound:
		switch c.Qualifier {
		case "offensive":
			return "Off Rebound"
		case "defensive":
			return "Def Rebound"
		}
		return "Rebound"
	case CategoryTurnover:
		return withQualifier("Turnover", c.Qualifier)
	case CategoryFoul:
		return withQualifier("Foul", c.Qualifier)
	case CategoryJumpBall:
		return "Jump Ball"
	case CategorySubstitution:
		if c.Qualifier != "" {
			return "Sub " + c.Qualifier
		}
		return "Substitution"
	case CategoryAssist:
		return "Assist"
	case CategoryBlock:
		return "Block"
	case CategorySteal:
		return "Steal"
	case CategoryViolation:
		return withQualifier("Violation", c.Qualifier)
	case CategoryTimeout:
		return withQualifier("Timeout", c.Qualifier)
	case CategoryPeriod:
		switch c.Qualifier {
		case "start":
			return "Start of Period"
		case "end":
			return "End of Period"
		case "game end":
			return "End of Game"
		}
		return "Period"
	}
	return ""
}

func madeWord(made bool) string {
	if made {
		return "Made"
	}
	return "Missed"
}

func withQualifier(label, qualifier string) string {
	if qualifier == "" {
		return label
	}
	return label + ": " + qualifier
}
