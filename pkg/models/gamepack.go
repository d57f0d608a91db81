package models

// GamepackVersion is the artifact schema version written into every gamepack
const GamepackVersion = 2

// Gamepack is the per-game artifact combining the slim box score and the play-by-play flow
type Gamepack struct {
	Version  int      `json:"v"`
	ID       string   `json:"id"`       // feed-native game id
	PublicID string   `json:"publicId"` // schedule id
	Box      *SlimBox `json:"box"`
	Flow     *Flow    `json:"flow"`
}

// Flow is the transformed play-by-play for one game
type Flow struct {
	Version  int          `json:"v"`
	Game     string       `json:"game"`
	Periods  int          `json:"periods"`
	Last     *ScorePoint  `json:"last"`
	Score    []ScorePoint `json:"score"`
	Players  SideEvents   `json:"players"`
	Segments SideSegments `json:"segments"`
	Events   []Event      `json:"events,omitempty"`
	Feed     []Event      `json:"feed,omitempty"` // compacted raw actions, debugging only
}

// ScorePoint is a moment in the running score. Scores are kept as the feed's opaque strings.
type ScorePoint struct {
	Period    int    `json:"period"`
	Clock     string `json:"clock"`
	AwayScore string `json:"awayScore"`
	HomeScore string `json:"homeScore"`
}

// Event is a compacted play-by-play action
type Event struct {
	Period    int    `json:"period"`
	Clock     string `json:"clock"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	Detail    string `json:"detail,omitempty"`
	Seq       string `json:"seq"`
	ID        string `json:"id,omitempty"`
	AwayScore string `json:"awayScore"`
	HomeScore string `json:"homeScore"`
}

// Segment is a stretch of time a player spent on court. End is empty while open.
type Segment struct {
	Period int    `json:"period"`
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
}

// SideEvents holds per-player event lists keyed by player name
type SideEvents struct {
	Away map[string][]Event `json:"away"`
	Home map[string][]Event `json:"home"`
}

// SideSegments holds per-player court time keyed by player name
type SideSegments struct {
	Away map[string][]Segment `json:"away"`
	Home map[string][]Segment `json:"home"`
}

// SlimBox is the reduced box score shipped inside a gamepack
type SlimBox struct {
	Start string    `json:"start,omitempty"`
	Teams SlimTeams `json:"teams"`
}

// SlimTeams holds both sides of a slim box score
type SlimTeams struct {
	Away *SlimTeam `json:"away"`
	Home *SlimTeam `json:"home"`
}

// SlimTeam is one team's slim box score
type SlimTeam struct {
	ID      int64        `json:"id"`
	Abbr    string       `json:"abbr"`
	Name    string       `json:"name"`
	Players []SlimPlayer `json:"players"`
}

// SlimPlayer is one box score row
type SlimPlayer struct {
	First string   `json:"first"`
	Last  string   `json:"last"`
	Stats StatLine `json:"stats"`
}

// StatLine is a player's counting stats
type StatLine struct {
	Min       string `json:"min"` // "MM:SS"
	Pts       int    `json:"pts"`
	FGM       int    `json:"fgm"`
	FGA       int    `json:"fga"`
	TPM       int    `json:"tpm"`
	TPA       int    `json:"tpa"`
	FTM       int    `json:"ftm"`
	FTA       int    `json:"fta"`
	OReb      int    `json:"oreb"`
	DReb      int    `json:"dreb"`
	Ast       int    `json:"ast"`
	Stl       int    `json:"stl"`
	Blk       int    `json:"blk"`
	TO        int    `json:"to"`
	PF        int    `json:"pf"`
	PlusMinus int    `json:"pm"`
}
