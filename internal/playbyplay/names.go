package playbyplay

import "strings"

// FixPlayerName restores the initial when the description writes the player
// as "X. Name", so "Helper" in "A. Helper 2PT Layup" becomes "A. Helper".
func FixPlayerName(a RawAction) string {
	name := a.PlayerName
	desc := a.Description
	if name == "" || desc == "" {
		return name
	}

	loc := strings.Index(desc, name)
	if loc >= 2 && desc[loc-2] == '.' {
		prefix := desc[:loc-2]
		start := strings.LastIndex(prefix, " ") + 1
		return desc[start : loc+len(name)]
	}
	return name
}

// ParseAssistName extracts the assisting player's name from a trailing
// "(Name N AST)" fragment. Returns "" when the description has no assist.
func ParseAssistName(a RawAction) string {
	desc := a.Description
	if !strings.Contains(desc, "AST") {
		return ""
	}

	open := strings.LastIndex(desc, "(")
	inner := desc[open+1:]
	inner = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(inner), ")"))

	words := strings.Fields(inner)
	if len(words) < 2 || words[len(words)-1] != "AST" {
		return ""
	}
	words = words[:len(words)-1]
	if len(words) > 1 && isDigits(words[len(words)-1]) {
		words = words[:len(words)-1]
	}

	name := strings.TrimRight(strings.Join(words, " "), ",;:")
	return normalizeName(name, a.TeamTricode)
}

// assistText is the fragment inside the last parentheses, "A. Helper 1 AST"
func assistText(desc string) string {
	open := strings.LastIndex(desc, "(")
	end := strings.LastIndex(desc, ")")
	if open >= 0 && end > open+1 {
		return desc[open+1 : end]
	}
	return desc
}

// normalizeName maps feed spellings onto the names used in player actions
func normalizeName(name, tricode string) string {
	switch {
	case name == "Porter" && tricode == "CLE":
		return "Porter Jr."
	case name == "Jokic":
		return "Jokić"
	}
	return name
}
