package playbyplay

import "github.com/fortuna/services/playbyplay-service/pkg/models"

// bucketSet groups compact events per player, remembering first-seen order
type bucketSet struct {
	order  []string
	events map[string][]models.Event
}

func newBucketSet() *bucketSet {
	return &bucketSet{events: make(map[string][]models.Event)}
}

func (s *bucketSet) ensure(name string) {
	if name == "" {
		return
	}
	if _, ok := s.events[name]; !ok {
		s.events[name] = []models.Event{}
		s.order = append(s.order, name)
	}
}

func (s *bucketSet) add(name string, ev models.Event) {
	s.ensure(name)
	s.events[name] = append(s.events[name], ev)
}

func (s *bucketSet) has(name string) bool {
	_, ok := s.events[name]
	return ok
}

func (s *bucketSet) names() []string {
	return s.order
}

func (s *bucketSet) build() map[string][]models.Event {
	return s.events
}
