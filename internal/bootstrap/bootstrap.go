// Package bootstrap builds the shared components every command needs from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/fortuna/services/playbyplay-service/internal/config"
	"github.com/fortuna/services/playbyplay-service/internal/feed"
	"github.com/fortuna/services/playbyplay-service/internal/poller"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/internal/trigger"
	"github.com/redis/go-redis/v9"
)

// NeedsRedis reports whether the configured backend keeps state in Redis
func NeedsRedis(cfg *config.Config) bool {
	return cfg.Storage.Backend != config.BackendMemory
}

// OpenRedis connects and pings Redis
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.URL, err)
	}
	log.Printf("[bootstrap] connected to Redis at %s", cfg.URL)
	return client, nil
}

// OpenStore builds the configured artifact store. client may be nil for the memory backend.
func OpenStore(ctx context.Context, cfg config.StorageConfig, client *redis.Client) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("[bootstrap] publishing artifacts to s3://%s/%s", cfg.Bucket, cfg.Prefix)
		return store, nil
	case config.BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis backend needs a Redis client")
		}
		log.Printf("[bootstrap] publishing artifacts to Redis")
		return storage.NewRedisStore(client, cfg.Prefix), nil
	case config.BackendMemory:
		log.Printf("[bootstrap] keeping artifacts in memory")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// TriggerState keeps trigger state in Redis when available
func TriggerState(client *redis.Client) trigger.State {
	if client == nil {
		return trigger.NewMemoryState()
	}
	return trigger.NewRedisState(client)
}

// PollerDeps are the feed-facing dependencies for cfg
func PollerDeps(cfg *config.Config, artifacts *storage.Artifacts, triggers trigger.Controller) poller.Deps {
	return poller.Deps{
		Artifacts:  artifacts,
		Fetcher:    feed.New(cfg.Feed.Timeout),
		Triggers:   triggers,
		Identities: feed.Identities(cfg.Feed.Identities),
		URLs:       feed.URLs{Base: cfg.Feed.BaseURL},
	}
}

// PollerConfig maps service configuration onto poller settings
func PollerConfig(cfg *config.Config) poller.Config {
	return poller.Config{
		PollerTrigger:  cfg.Trigger.PollerID,
		KickoffTrigger: cfg.Trigger.KickoffID,
		ReconcileDays:  cfg.ReconcileDays,
		IncludeEvents:  cfg.IncludeEvents,
	}
}

// Recurring lists the cron triggers the service runs. The poller trigger is toggled
// by kickoff and the poll loop; the others always fire.
func Recurring(cfg *config.Config) []trigger.Recurring {
	triggers := []trigger.Recurring{
		{ID: cfg.Trigger.ManagerID, Spec: cfg.Trigger.ManagerSpec, Payload: poller.EncodeTask(poller.ManagerTask{})},
		{ID: cfg.Trigger.PollerID, Spec: cfg.Trigger.PollerSpec, Payload: poller.EncodeTask(poller.PollTask{}), Toggled: true},
	}
	if cfg.Trigger.ScoreboardSpec != "" {
		triggers = append(triggers, trigger.Recurring{
			ID:      cfg.Trigger.ScoreboardID,
			Spec:    cfg.Trigger.ScoreboardSpec,
			Payload: poller.EncodeTask(poller.ScoreboardTask{}),
		})
	}
	return triggers
}
