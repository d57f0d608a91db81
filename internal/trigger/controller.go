package trigger

import (
	"context"
	"time"
)

// Controller turns recurring triggers on and off and arms one-shot triggers
type Controller interface {
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	ScheduleOnce(ctx context.Context, id string, at time.Time, payload []byte) error
	CancelScheduled(ctx context.Context, id string) error
}

// Invoker runs a triggered invocation. ctx carries the invocation deadline.
type Invoker func(ctx context.Context, payload []byte) error

// OnceJob is a persisted one-shot trigger
type OnceJob struct {
	At      time.Time `json:"at"`
	Payload []byte    `json:"payload"`
}

// State persists trigger switches and pending one-shot jobs across restarts
type State interface {
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Enabled(ctx context.Context, id string) (bool, error)
	SaveOnce(ctx context.Context, id string, job OnceJob) error
	DeleteOnce(ctx context.Context, id string) error
	LoadOnce(ctx context.Context) (map[string]OnceJob, error)
}
