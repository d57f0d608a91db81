package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second
)

// Notifier receives routed artifact changes. *fanout.Sender implements it.
type Notifier interface {
	NotifyDate(ctx context.Context, date string) error
	NotifyGame(ctx context.Context, gameID, key, version string) error
}

// StreamConsumer turns artifact change messages into subscriber notifications
type StreamConsumer struct {
	redis      *redis.Client
	notifier   Notifier
	stream     string
	group      string
	consumerID string
}

// NewStreamConsumer creates a consumer reading stream as consumerID in group
func NewStreamConsumer(redisClient *redis.Client, notifier Notifier, stream, group, consumerID string) *StreamConsumer {
	return &StreamConsumer{
		redis:      redisClient,
		notifier:   notifier,
		stream:     stream,
		group:      group,
		consumerID: consumerID,
	}
}

// Start consumes the stream until ctx ends
func (sc *StreamConsumer) Start(ctx context.Context) error {
	log.Printf("[consumer] consuming %s as %s/%s", sc.stream, sc.group, sc.consumerID)
	sc.createConsumerGroup(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    sc.group,
			Consumer: sc.consumerID,
			Streams:  []string{sc.stream, ">"},
			Count:    batchSize,
			Block:    blockDuration,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[consumer] stream read error (%s): %v", sc.stream, err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				sc.processMessage(ctx, message)
			}
		}
	}
}

func (sc *StreamConsumer) createConsumerGroup(ctx context.Context) {
	err := sc.redis.XGroupCreateMkStream(ctx, sc.stream, sc.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Printf("[consumer] failed to create consumer group for %s: %v", sc.stream, err)
	}
}

func (sc *StreamConsumer) processMessage(ctx context.Context, msg redis.XMessage) {
	defer sc.ackMessage(ctx, msg.ID)

	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		log.Printf("[consumer] invalid message format in %s: %v", sc.stream, msg.Values)
		return
	}

	var change models.ArtifactChange
	if err := json.Unmarshal([]byte(dataStr), &change); err != nil {
		log.Printf("[consumer] failed to parse change from %s: %v", sc.stream, err)
		return
	}

	if err := Route(ctx, sc.notifier, change); err != nil {
		log.Printf("[consumer] notifying for %s: %v", change.Key, err)
	}
}

func (sc *StreamConsumer) ackMessage(ctx context.Context, messageID string) {
	if err := sc.redis.XAck(ctx, sc.stream, sc.group, messageID).Err(); err != nil {
		log.Printf("[consumer] failed to ack message %s in %s: %v", messageID, sc.stream, err)
	}
}

// Route sends a schedule write to the date's subscribers and a gamepack write
// to the game's subscribers. Other keys are ignored.
func Route(ctx context.Context, n Notifier, change models.ArtifactChange) error {
	if date, ok := storage.DateFromScheduleKey(change.Key); ok {
		return n.NotifyDate(ctx, date)
	}
	if gameID, ok := storage.PublicIDFromGamepackKey(change.Key); ok {
		return n.NotifyGame(ctx, gameID, change.Key, change.Version)
	}
	return nil
}
