package storage

import (
	"net/url"
	"regexp"
	"strings"
)

// Artifact key prefixes
const (
	SchedulePrefix  = "schedule/"
	GamepackPrefix  = "gamepack/"
	GameIDMapPrefix = "gameIdMap/"
	InitKey         = "init.json"
	ManifestKey     = "manifest.json"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ScheduleKey is the daily schedule artifact for date
func ScheduleKey(date string) string {
	return SchedulePrefix + date + ".json"
}

// GamepackKey is the gamepack artifact for a public id
func GamepackKey(publicID string) string {
	return GamepackPrefix + publicID + ".json"
}

// GameIDMapKey is the publicId to native id map for date
func GameIDMapKey(date string) string {
	return GameIDMapPrefix + date + ".json"
}

// DateFromScheduleKey extracts the date from a schedule key. The key may be
// URL-encoded and may end in .json or .json.gz; the date must be YYYY-MM-DD.
func DateFromScheduleKey(key string) (string, bool) {
	name, ok := trimArtifactKey(key, SchedulePrefix)
	if !ok {
		return "", false
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if !dateRe.MatchString(name) {
		return "", false
	}
	return name, true
}

// PublicIDFromGamepackKey extracts the public id from a gamepack key
func PublicIDFromGamepackKey(key string) (string, bool) {
	name, ok := trimArtifactKey(key, GamepackPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func trimArtifactKey(key, prefix string) (string, bool) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(decoded, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(decoded, prefix)
	for _, suffix := range []string{".json.gz", ".json"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}
