package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/services/playbyplay-service/pkg/models"
	"github.com/redis/go-redis/v9"
)

// DefaultStream carries artifact change notifications
const DefaultStream = "artifacts.updates"

// maxStreamLength bounds the stream; consumers only care about recent writes
const maxStreamLength = 10000

// StreamPublisher publishes artifact writes to a Redis stream
type StreamPublisher struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

// NewStreamPublisher creates a publisher. An empty stream name uses DefaultStream.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		now:    time.Now,
	}
}

// Stream returns the stream name
func (p *StreamPublisher) Stream() string {
	return p.stream
}

// ArtifactWritten implements storage.ChangeListener
func (p *StreamPublisher) ArtifactWritten(ctx context.Context, key, version string) error {
	data, err := json.Marshal(models.ArtifactChange{
		Key:       key,
		Version:   version,
		WrittenAt: p.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling change for %s: %w", key, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
			"key":  key,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publishing to stream %s: %w", p.stream, err)
	}
	return nil
}
