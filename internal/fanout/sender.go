package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/fortuna/services/playbyplay-service/internal/retry"
)

// Delivery is the outcome of one notification
type Delivery int

const (
	// Delivered means the subscriber accepted the payload
	Delivered Delivery = iota
	// Gone means the subscriber no longer exists and should be removed
	Gone
)

func (d Delivery) String() string {
	if d == Gone {
		return "gone"
	}
	return "delivered"
}

// Notifier pushes a payload to one subscriber
type Notifier interface {
	Notify(ctx context.Context, subscriberID string, payload []byte) (Delivery, error)
}

// Defaults for batched sends
const (
	DefaultBatchSize      = 50
	DefaultMaxConcurrency = 10
	removeBatchSize       = 25
)

// Sender fans payloads out to subscribers in batches with bounded concurrency
// and removes subscribers reported gone
type Sender struct {
	notifier       Notifier
	subs           Subscriptions
	batchSize      int
	maxConcurrency int
	retry          *retry.Policy
}

// NewSender creates a sender. Non-positive sizes fall back to the defaults.
func NewSender(notifier Notifier, subs Subscriptions, batchSize, maxConcurrency int) *Sender {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Sender{
		notifier:       notifier,
		subs:           subs,
		batchSize:      batchSize,
		maxConcurrency: maxConcurrency,
		retry:          retry.Default(),
	}
}

// WithRetry replaces the stale-removal retry policy
func (s *Sender) WithRetry(p *retry.Policy) *Sender {
	s.retry = p
	return s
}

// NotifyDate tells every subscriber of date that its schedule changed
func (s *Sender) NotifyDate(ctx context.Context, date string) error {
	ids, err := s.subs.DateSubscribers(ctx, date)
	if err != nil {
		return fmt.Errorf("listing subscribers for %s: %w", date, err)
	}
	payload, _ := json.Marshal(DateUpdate{Type: MessageTypeDateUpdate, Date: date})
	s.Send(ctx, ids, payload, "date "+date)
	return nil
}

// NotifyGame tells every subscriber of gameID that a new gamepack version exists
func (s *Sender) NotifyGame(ctx context.Context, gameID, key, version string) error {
	ids, err := s.subs.GameSubscribers(ctx, gameID)
	if err != nil {
		return fmt.Errorf("listing subscribers for %s: %w", gameID, err)
	}
	payload, _ := json.Marshal(GameUpdate{GameID: gameID, Key: key, Version: version})
	s.Send(ctx, ids, payload, "game "+gameID)
	return nil
}

// Send delivers payload to ids batch by batch. Failed deliveries are logged;
// subscribers reported gone are removed after each batch.
func (s *Sender) Send(ctx context.Context, ids []string, payload []byte, label string) {
	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		stale := s.sendBatch(ctx, ids[start:end], payload, label)
		if len(stale) > 0 {
			s.removeStale(ctx, stale, label)
		}
	}
}

func (s *Sender) sendBatch(ctx context.Context, batch []string, payload []byte, label string) []string {
	gone := make([]bool, len(batch))
	work := make(chan int)

	workers := s.maxConcurrency
	if workers > len(batch) {
		workers = len(batch)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				id := batch[i]
				delivery, err := s.notifier.Notify(ctx, id, payload)
				if delivery == Gone {
					log.Printf("[fanout] %s: found stale subscriber %s", label, id)
					gone[i] = true
					continue
				}
				if err != nil {
					log.Printf("[fanout] %s: failed to send to %s: %v", label, id, err)
				}
			}
		}()
	}
	for i := range batch {
		work <- i
	}
	close(work)
	wg.Wait()

	var stale []string
	for i, g := range gone {
		if g {
			stale = append(stale, batch[i])
		}
	}
	return stale
}

func (s *Sender) removeStale(ctx context.Context, ids []string, label string) {
	for start := 0; start < len(ids); start += removeBatchSize {
		end := start + removeBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		err := s.retry.Execute(ctx, func(attempt int) error {
			if err := s.subs.Remove(ctx, chunk...); err != nil {
				log.Printf("[fanout] %s: remove attempt %d failed: %v", label, attempt, err)
				return err
			}
			return nil
		})
		if err != nil {
			log.Printf("[fanout] %s: failed to remove %d stale subscribers: %v", label, len(chunk), err)
		}
	}
}
