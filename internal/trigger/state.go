package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MemoryState keeps trigger state in process memory
type MemoryState struct {
	mu      sync.Mutex
	enabled map[string]bool
	once    map[string]OnceJob
}

// NewMemoryState creates empty in-memory trigger state
func NewMemoryState() *MemoryState {
	return &MemoryState{
		enabled: make(map[string]bool),
		once:    make(map[string]OnceJob),
	}
}

func (s *MemoryState) SetEnabled(_ context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[id] = enabled
	return nil
}

func (s *MemoryState) Enabled(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[id], nil
}

func (s *MemoryState) SaveOnce(_ context.Context, id string, job OnceJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.once[id] = job
	return nil
}

func (s *MemoryState) DeleteOnce(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.once, id)
	return nil
}

func (s *MemoryState) LoadOnce(_ context.Context) (map[string]OnceJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OnceJob, len(s.once))
	for k, v := range s.once {
		out[k] = v
	}
	return out, nil
}

const onceHashKey = "trigger:once"

// RedisState keeps trigger state in Redis so a restarted process resumes where it left off
type RedisState struct {
	client *redis.Client
}

// NewRedisState creates Redis-backed trigger state
func NewRedisState(client *redis.Client) *RedisState {
	return &RedisState{client: client}
}

func enabledKey(id string) string {
	return fmt.Sprintf("trigger:%s:enabled", id)
}

func (s *RedisState) SetEnabled(ctx context.Context, id string, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.client.Set(ctx, enabledKey(id), value, 0).Err()
}

func (s *RedisState) Enabled(ctx context.Context, id string) (bool, error) {
	value, err := s.client.Get(ctx, enabledKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading trigger %s: %w", id, err)
	}
	return value == "1", nil
}

func (s *RedisState) SaveOnce(ctx context.Context, id string, job OnceJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling one-shot %s: %w", id, err)
	}
	return s.client.HSet(ctx, onceHashKey, id, data).Err()
}

func (s *RedisState) DeleteOnce(ctx context.Context, id string) error {
	return s.client.HDel(ctx, onceHashKey, id).Err()
}

func (s *RedisState) LoadOnce(ctx context.Context) (map[string]OnceJob, error) {
	fields, err := s.client.HGetAll(ctx, onceHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading one-shot triggers: %w", err)
	}
	jobs := make(map[string]OnceJob, len(fields))
	for id, data := range fields {
		var job OnceJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			continue
		}
		jobs[id] = job
	}
	return jobs, nil
}
