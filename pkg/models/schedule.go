package models

// ScheduleEntry is one game in the published per-date schedule artifact
type ScheduleEntry struct {
	ID         string `json:"id"`         // publicId: date-awaySlug-homeSlug
	Date       string `json:"date"`       // "2024-01-15" (league date, Eastern)
	StartTime  string `json:"starttime"`  // naive Eastern "2024-01-15T19:30:00"
	HomeTeam   string `json:"hometeam"`   // tricode, "BOS"
	AwayTeam   string `json:"awayteam"`   // tricode, "LAL"
	HomeScore  int    `json:"homescore"`
	AwayScore  int    `json:"awayscore"`
	Status     string `json:"status"`     // feed status text, "Q3 5:12", "Final"
	Time       string `json:"time"`       // clock text, "5:12"
	HomeRecord string `json:"homerecord"` // "30-12"
	AwayRecord string `json:"awayrecord"`

	HomeTeamID int64  `json:"homeTeamId,omitempty"`
	AwayTeamID int64  `json:"awayTeamId,omitempty"`
	PlayETag   string `json:"play_etag,omitempty"`
	BoxETag    string `json:"box_etag,omitempty"`
}

// GameIDMap maps publicId to the feed-native game id for one date
type GameIDMap map[string]string

// InitState is the landing payload telling clients which date and game to open
type InitState struct {
	Date      string `json:"date"`
	GameID    string `json:"gameId,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

// Manifest lists the public ids of every game that has a final gamepack
type Manifest struct {
	Games     []string `json:"games"`
	UpdatedAt string   `json:"updatedAt"`
}
