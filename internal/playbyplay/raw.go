package playbyplay

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Feed is the play-by-play document served by the live data endpoint
type Feed struct {
	Game struct {
		GameID     string      `json:"gameId"`
		HomeTeamID FlexInt     `json:"homeTeamId"`
		AwayTeamID FlexInt     `json:"awayTeamId"`
		Actions    []RawAction `json:"actions"`
	} `json:"game"`
}

// RawAction is a feed-native play-by-play record
type RawAction struct {
	ActionNumber   FlexString `json:"actionNumber"`
	ActionID       FlexString `json:"actionId,omitempty"`
	Period         FlexInt    `json:"period"`
	Clock          string     `json:"clock"`
	TeamID         FlexInt    `json:"teamId"`
	TeamTricode    string     `json:"teamTricode"`
	PersonID       FlexInt    `json:"personId"`
	PlayerName     string     `json:"playerName"`
	PlayerNameI    string     `json:"playerNameI"`
	Description    string     `json:"description"`
	ActionType     string     `json:"actionType"`
	SubType        string     `json:"subType"`
	Descriptor     string     `json:"descriptor,omitempty"`
	ScoreHome      FlexString `json:"scoreHome"`
	ScoreAway      FlexString `json:"scoreAway"`
	Location       string     `json:"location"`
	AssistPersonID FlexInt    `json:"assistPersonId,omitempty"`
	ShotResult     string     `json:"shotResult,omitempty"`
	ShotDistance   FlexFloat  `json:"shotDistance,omitempty"`
}

// FlexInt decodes a JSON number, numeric string or null into an int64
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(i)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int64(v))
		return nil
	}
	*f = 0
	return nil
}

// FlexFloat decodes a JSON number, numeric string or null into a float64
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = 0
	}
	*f = FlexFloat(v)
	return nil
}

// FlexString decodes a JSON string, number or null into its text form
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}
