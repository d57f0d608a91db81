package fanout

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Subscriptions records which date and game each subscriber follows. A subscriber
// follows at most one date and one game; joining again replaces the previous one.
type Subscriptions interface {
	JoinDate(ctx context.Context, subscriberID, date string) error
	JoinGame(ctx context.Context, subscriberID, gameID string) error
	UnfollowDate(ctx context.Context, subscriberID string) error
	UnfollowGame(ctx context.Context, subscriberID string) error
	// Remove drops every subscription held by the given subscribers
	Remove(ctx context.Context, subscriberIDs ...string) error
	DateSubscribers(ctx context.Context, date string) ([]string, error)
	GameSubscribers(ctx context.Context, gameID string) ([]string, error)
}

type membership struct {
	value     string
	expiresAt time.Time
}

// MemorySubscriptions keeps subscriptions in process memory
type MemorySubscriptions struct {
	mu    sync.Mutex
	dates map[string]membership
	games map[string]membership
	ttl   time.Duration
	now   func() time.Time
}

// NewMemorySubscriptions creates an empty in-memory subscription registry
func NewMemorySubscriptions() *MemorySubscriptions {
	return &MemorySubscriptions{
		dates: make(map[string]membership),
		games: make(map[string]membership),
		ttl:   SubscriptionTTL,
		now:   time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *MemorySubscriptions) WithClock(now func() time.Time) *MemorySubscriptions {
	m.now = now
	return m
}

func (m *MemorySubscriptions) JoinDate(_ context.Context, subscriberID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dates[subscriberID] = membership{value: date, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySubscriptions) JoinGame(_ context.Context, subscriberID, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[subscriberID] = membership{value: gameID, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySubscriptions) UnfollowDate(_ context.Context, subscriberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dates, subscriberID)
	return nil
}

func (m *MemorySubscriptions) UnfollowGame(_ context.Context, subscriberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, subscriberID)
	return nil
}

func (m *MemorySubscriptions) Remove(_ context.Context, subscriberIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range subscriberIDs {
		delete(m.dates, id)
		delete(m.games, id)
	}
	return nil
}

func (m *MemorySubscriptions) DateSubscribers(_ context.Context, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(m.dates, date), nil
}

func (m *MemorySubscriptions) GameSubscribers(_ context.Context, gameID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(m.games, gameID), nil
}

// matching expires stale entries and returns sorted subscribers following value
func (m *MemorySubscriptions) matching(set map[string]membership, value string) []string {
	now := m.now()
	var ids []string
	for id, mem := range set {
		if !now.Before(mem.expiresAt) {
			delete(set, id)
			continue
		}
		if mem.value == value {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
