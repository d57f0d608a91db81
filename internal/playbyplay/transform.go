package playbyplay

import (
	"sort"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// Input is everything Transform needs for one game
type Input struct {
	GameID        string
	Actions       []RawAction
	AwayTeamID    int64 // zero means infer from the actions
	HomeTeamID    int64
	IncludeEvents bool // merged, time-ordered event list
	IncludeFeed   bool // every raw action compacted, in feed order
}

// Transform turns an ordered action list into a Flow. It is a pure function of its input.
func Transform(in Input) models.Flow {
	away, home := in.AwayTeamID, in.HomeTeamID
	if away == 0 || home == 0 {
		if a, h, ok := InferTeams(in.Actions); ok {
			away, home = a, h
		}
	}

	flow := models.Flow{
		Version: models.GamepackVersion,
		Game:    in.GameID,
		Periods: 4,
		Score:   scoreTimeline(in.Actions),
	}

	if n := len(in.Actions); n > 0 {
		last := in.Actions[n-1]
		if int(last.Period) > 4 {
			flow.Periods = int(last.Period)
		}
		flow.Last = &models.ScorePoint{
			Period:    int(last.Period),
			Clock:     NormalizeClock(last.Clock),
			AwayScore: string(last.ScoreAway),
			HomeScore: string(last.ScoreHome),
		}
	}

	awayBuckets, homeBuckets, merged := groupPlayers(in.Actions, away, home)
	flow.Players = models.SideEvents{Away: awayBuckets.build(), Home: homeBuckets.build()}

	awayTimes := newTimelineBuilder(in.GameID, "away", awayBuckets.names())
	homeTimes := newTimelineBuilder(in.GameID, "home", homeBuckets.names())
	buildTimelines(in.Actions, away, home, awayTimes, homeTimes)
	flow.Segments = models.SideSegments{Away: awayTimes.build(), Home: homeTimes.build()}

	if in.IncludeEvents {
		flow.Events = SortEvents(merged)
	}
	if in.IncludeFeed {
		feed := make([]models.Event, 0, len(in.Actions))
		for _, a := range in.Actions {
			feed = append(feed, compact(a))
		}
		flow.Feed = feed
	}
	return flow
}

// groupPlayers buckets compact events per player for each side and returns
// the merged list of every action plus synthesized assists
func groupPlayers(actions []RawAction, away, home int64) (*bucketSet, *bucketSet, []models.Event) {
	awayBuckets, homeBuckets := newBucketSet(), newBucketSet()
	merged := make([]models.Event, 0, len(actions))

	for _, a := range actions {
		ev := compact(a)
		merged = append(merged, ev)

		var buckets *bucketSet
		switch int64(a.TeamID) {
		case 0:
		case away:
			buckets = awayBuckets
		case home:
			buckets = homeBuckets
		}
		name := FixPlayerName(a)
		if buckets == nil || name == "" {
			continue
		}

		buckets.add(name, ev)
		if assist, ok := synthesizeAssist(a); ok {
			buckets.add(assist.PlayerName, compact(assist))
			merged = append(merged, compact(assist))
		}
		if a.ActionType == "Substitution" {
			buckets.ensure(subForIncoming(a))
		}
	}
	return awayBuckets, homeBuckets, merged
}

// synthesizeAssist derives the assisting player's action from a scoring description
func synthesizeAssist(a RawAction) (RawAction, bool) {
	if a.ActionType == "Assist" || a.ActionType == "assist" {
		return RawAction{}, false
	}
	name := ParseAssistName(a)
	if name == "" {
		return RawAction{}, false
	}

	base := a.ActionID
	if base == "" {
		base = a.ActionNumber
	}
	return RawAction{
		ActionNumber: a.ActionNumber + "a",
		ActionID:     base + "a",
		Period:       a.Period,
		Clock:        a.Clock,
		TeamID:       a.TeamID,
		TeamTricode:  a.TeamTricode,
		PersonID:     a.AssistPersonID,
		PlayerName:   name,
		PlayerNameI:  name,
		Description:  assistText(a.Description),
		ActionType:   "Assist",
		ScoreHome:    a.ScoreHome,
		ScoreAway:    a.ScoreAway,
		Location:     a.Location,
	}, true
}

func buildTimelines(actions []RawAction, away, home int64, awayTimes, homeTimes *timelineBuilder) {
	current := 1
	for _, a := range actions {
		period := int(a.Period)
		if period == 0 {
			period = 1
		}
		if period != current {
			awayTimes.forceCloseAll(periodEnd)
			homeTimes.forceCloseAll(periodEnd)
			current = period
		}

		var b *timelineBuilder
		switch int64(a.TeamID) {
		case 0:
		case away:
			b = awayTimes
		case home:
			b = homeTimes
		}
		if b == nil {
			continue
		}

		clock := NormalizeClock(a.Clock)
		actor := FixPlayerName(a)
		if parser := parserFor(a.ActionType); parser != nil {
			if sub, ok := parser.Parse(a, actor); ok {
				b.apply(sub, period, clock)
			}
			continue
		}

		b.extend(actor, period, clock)
		if a.ActionType != "Assist" && a.ActionType != "assist" {
			if assist := ParseAssistName(a); assist != "" && assist != actor {
				b.extend(assist, period, clock)
			}
		}
	}

	if n := len(actions); n > 0 {
		clock := NormalizeClock(actions[n-1].Clock)
		awayTimes.forceCloseAll(clock)
		homeTimes.forceCloseAll(clock)
	}
}

// SortEvents orders events chronologically: period ascending, remaining clock descending.
// Ties keep their input order.
func SortEvents(events []models.Event) []models.Event {
	out := make([]models.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return ClockSeconds(out[i].Clock) > ClockSeconds(out[j].Clock)
	})
	return out
}

// compact reduces an action to the published event fields
func compact(a RawAction) models.Event {
	text := Classify(a).Text()
	if text == "" {
		text = a.Description
	}
	return models.Event{
		Period:    int(a.Period),
		Clock:     NormalizeClock(a.Clock),
		Type:      a.ActionType,
		Text:      text,
		Detail:    a.SubType,
		Seq:       string(a.ActionNumber),
		ID:        string(a.ActionID),
		AwayScore: string(a.ScoreAway),
		HomeScore: string(a.ScoreHome),
	}
}
