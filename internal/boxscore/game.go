package boxscore

// Feed is the box score document served by the live data endpoint
type Feed struct {
	Game Game `json:"game"`
}

// Game is the raw box score snapshot for one game
type Game struct {
	GameID          string `json:"gameId"`
	GameStatus      int    `json:"gameStatus"`
	GameStatusText  string `json:"gameStatusText"`
	GameClock       string `json:"gameClock"`
	GameEt          string `json:"gameEt"`
	GameTimeUTC     string `json:"gameTimeUTC"`
	GameDateTimeUTC string `json:"gameDateTimeUTC"`
	Period          int    `json:"period"`
	HomeTeamID      int64  `json:"homeTeamId"`
	AwayTeamID      int64  `json:"awayTeamId"`
	HomeTeam        *Team  `json:"homeTeam"`
	AwayTeam        *Team  `json:"awayTeam"`
}

// Team is one side of a raw box score
type Team struct {
	TeamID      int64       `json:"teamId"`
	TeamName    string      `json:"teamName"`
	TeamCity    string      `json:"teamCity"`
	TeamTricode string      `json:"teamTricode"`
	Score       interface{} `json:"score"`
	Wins        interface{} `json:"wins"`
	Losses      interface{} `json:"losses"`
	Players     []Player    `json:"players"`
}

// Player is one roster row. Statistics are left loosely typed; the feed mixes numbers and strings.
type Player struct {
	PersonID   int64                  `json:"personId"`
	FirstName  string                 `json:"firstName"`
	FamilyName string                 `json:"familyName"`
	Statistics map[string]interface{} `json:"statistics"`
}

// HomeID returns the home team id from whichever field carries it
func (g Game) HomeID() int64 {
	if g.HomeTeam != nil && g.HomeTeam.TeamID != 0 {
		return g.HomeTeam.TeamID
	}
	return g.HomeTeamID
}

// AwayID returns the away team id from whichever field carries it
func (g Game) AwayID() int64 {
	if g.AwayTeam != nil && g.AwayTeam.TeamID != 0 {
		return g.AwayTeam.TeamID
	}
	return g.AwayTeamID
}
