package playbyplay

import (
	"log"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

type playerTimeline struct {
	segments []models.Segment
	on       bool
}

// timelineBuilder tracks on-court intervals for one side of a game
type timelineBuilder struct {
	gameID  string
	side    string
	order   []string
	players map[string]*playerTimeline
}

func newTimelineBuilder(gameID, side string, names []string) *timelineBuilder {
	b := &timelineBuilder{
		gameID:  gameID,
		side:    side,
		players: make(map[string]*playerTimeline, len(names)),
	}
	for _, name := range names {
		b.add(name)
	}
	return b
}

func (b *timelineBuilder) add(name string) *playerTimeline {
	p := &playerTimeline{segments: []models.Segment{}}
	b.players[name] = p
	b.order = append(b.order, name)
	return p
}

func (b *timelineBuilder) known(name string) bool {
	_, ok := b.players[name]
	return ok
}

// lookup returns the player's timeline, adding one if a substitution names
// someone who never appeared in an action
func (b *timelineBuilder) lookup(name string) *playerTimeline {
	if p, ok := b.players[name]; ok {
		return p
	}
	log.Printf("[playbyplay] game %s %s: substitution names unknown player %q", b.gameID, b.side, name)
	return b.add(name)
}

// open starts a new interval at clock
func (b *timelineBuilder) open(name string, period int, clock string) {
	p := b.lookup(name)
	p.segments = append(p.segments, models.Segment{Period: period, Start: clock})
	p.on = true
}

// extend records the player as on court at clock. A player not yet on court
// is assumed to have played since the start of the period.
func (b *timelineBuilder) extend(name string, period int, clock string) {
	p, ok := b.players[name]
	if !ok {
		return
	}
	if !p.on {
		p.segments = append(p.segments, models.Segment{Period: period, Start: periodStart(period), End: clock})
		p.on = true
		return
	}
	if n := len(p.segments); n > 0 {
		p.segments[n-1].End = clock
	}
}

// close ends the player's interval at clock, seeding one from the period start if needed
func (b *timelineBuilder) close(name string, period int, clock string) {
	p := b.lookup(name)
	if !p.on {
		p.segments = append(p.segments, models.Segment{Period: period, Start: periodStart(period)})
	}
	p.segments[len(p.segments)-1].End = clock
	p.on = false
}

// forceCloseAll ends every open interval at clock
func (b *timelineBuilder) forceCloseAll(clock string) {
	for _, name := range b.order {
		p := b.players[name]
		if p.on && len(p.segments) > 0 {
			p.segments[len(p.segments)-1].End = clock
		}
		p.on = false
	}
}

func (b *timelineBuilder) apply(sub substitution, period int, clock string) {
	if sub.In != "" {
		b.open(sub.In, period, clock)
	}
	if sub.Out != "" {
		b.close(sub.Out, period, clock)
	}
}

func (b *timelineBuilder) build() map[string][]models.Segment {
	out := make(map[string][]models.Segment, len(b.players))
	for name, p := range b.players {
		out[name] = p.segments
	}
	return out
}
