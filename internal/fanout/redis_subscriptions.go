package fanout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldDate = "date"
	fieldGame = "game"
)

// RedisSubscriptions keeps subscriptions in Redis. Each followed date and game is a
// sorted set of subscriber ids scored by expiry; each subscriber has a hash naming
// what it follows so a rejoin or disconnect can clean up the old set.
type RedisSubscriptions struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSubscriptions creates a Redis-backed subscription registry
func NewRedisSubscriptions(client *redis.Client) *RedisSubscriptions {
	return &RedisSubscriptions{client: client, ttl: SubscriptionTTL, now: time.Now}
}

func dateSetKey(date string) string {
	return "fanout:date:" + date
}

func gameSetKey(gameID string) string {
	return "fanout:game:" + gameID
}

func subscriberKey(subscriberID string) string {
	return "fanout:sub:" + subscriberID
}

func (r *RedisSubscriptions) JoinDate(ctx context.Context, subscriberID, date string) error {
	return r.join(ctx, subscriberID, fieldDate, date, dateSetKey)
}

func (r *RedisSubscriptions) JoinGame(ctx context.Context, subscriberID, gameID string) error {
	return r.join(ctx, subscriberID, fieldGame, gameID, gameSetKey)
}

func (r *RedisSubscriptions) join(ctx context.Context, subscriberID, field, value string, setKey func(string) string) error {
	previous, err := r.client.HGet(ctx, subscriberKey(subscriberID), field).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading subscriber %s: %w", subscriberID, err)
	}

	expiresAt := r.now().Add(r.ttl)
	pipe := r.client.TxPipeline()
	if previous != "" && previous != value {
		pipe.ZRem(ctx, setKey(previous), subscriberID)
	}
	pipe.ZAdd(ctx, setKey(value), redis.Z{Score: float64(expiresAt.Unix()), Member: subscriberID})
	pipe.ExpireAt(ctx, setKey(value), expiresAt)
	pipe.HSet(ctx, subscriberKey(subscriberID), field, value)
	pipe.Expire(ctx, subscriberKey(subscriberID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("joining %s %s: %w", field, value, err)
	}
	return nil
}

func (r *RedisSubscriptions) UnfollowDate(ctx context.Context, subscriberID string) error {
	return r.unfollow(ctx, subscriberID, fieldDate, dateSetKey)
}

func (r *RedisSubscriptions) UnfollowGame(ctx context.Context, subscriberID string) error {
	return r.unfollow(ctx, subscriberID, fieldGame, gameSetKey)
}

func (r *RedisSubscriptions) unfollow(ctx context.Context, subscriberID, field string, setKey func(string) string) error {
	previous, err := r.client.HGet(ctx, subscriberKey(subscriberID), field).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading subscriber %s: %w", subscriberID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, setKey(previous), subscriberID)
	pipe.HDel(ctx, subscriberKey(subscriberID), field)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unfollowing %s for %s: %w", field, subscriberID, err)
	}
	return nil
}

func (r *RedisSubscriptions) Remove(ctx context.Context, subscriberIDs ...string) error {
	var errs []error
	for _, id := range subscriberIDs {
		if err := r.UnfollowDate(ctx, id); err != nil {
			errs = append(errs, err)
		}
		if err := r.UnfollowGame(ctx, id); err != nil {
			errs = append(errs, err)
		}
		if err := r.client.Del(ctx, subscriberKey(id)).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *RedisSubscriptions) DateSubscribers(ctx context.Context, date string) ([]string, error) {
	return r.members(ctx, dateSetKey(date))
}

func (r *RedisSubscriptions) GameSubscribers(ctx context.Context, gameID string) ([]string, error) {
	return r.members(ctx, gameSetKey(gameID))
}

// members drops expired subscribers, then lists the rest
func (r *RedisSubscriptions) members(ctx context.Context, key string) ([]string, error) {
	now := strconv.FormatInt(r.now().Unix(), 10)
	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", now)
	members := pipe.ZRange(ctx, key, 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}
	return members.Val(), nil
}
