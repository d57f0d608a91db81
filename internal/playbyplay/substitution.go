package playbyplay

import "strings"

// substitution names the players entering and leaving the court. Either side may be empty.
type substitution struct {
	In  string
	Out string
}

// SubstitutionParser reads a substitution action in one of the feed's dialects
type SubstitutionParser interface {
	Parse(a RawAction, actor string) (substitution, bool)
}

// subForParser reads "SUB: Incoming FOR Outgoing". The acting player is the one leaving.
type subForParser struct{}

func (subForParser) Parse(a RawAction, actor string) (substitution, bool) {
	name := subForIncoming(a)
	if name == "" && actor == "" {
		return substitution{}, false
	}
	return substitution{In: name, Out: actor}, true
}

func subForIncoming(a RawAction) string {
	desc := a.Description
	start := strings.Index(desc, "SUB:")
	end := strings.Index(desc, " FOR ")
	if start < 0 || end < start+4 {
		return ""
	}
	name := strings.TrimSpace(desc[start+4 : end])
	return normalizeName(name, a.TeamTricode)
}

// inOutParser reads "SUB in: Name" and "SUB out: Name"
type inOutParser struct{}

func (inOutParser) Parse(a RawAction, _ string) (substitution, bool) {
	desc := a.Description
	colon := strings.Index(desc, ":")
	if colon < 0 {
		return substitution{}, false
	}
	name := normalizeName(strings.TrimSpace(desc[colon+1:]), a.TeamTricode)
	if name == "" {
		return substitution{}, false
	}

	switch {
	case strings.Contains(desc, "out:"):
		return substitution{Out: name}, true
	case strings.Contains(desc, "in:"):
		return substitution{In: name}, true
	}
	return substitution{}, false
}

// parserFor selects the dialect by the action type discriminator
func parserFor(actionType string) SubstitutionParser {
	switch actionType {
	case "Substitution":
		return subForParser{}
	case "substitution":
		return inOutParser{}
	}
	return nil
}
