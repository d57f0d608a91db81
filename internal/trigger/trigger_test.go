package trigger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/trigger"
)

type recorder struct {
	mu       sync.Mutex
	payloads []string
	done     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 8)}
}

func (r *recorder) invoke(_ context.Context, payload []byte) error {
	r.mu.Lock()
	r.payloads = append(r.payloads, string(payload))
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func TestCronController_ToggledTrigger(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder()
	c := trigger.NewCronController(trigger.NewMemoryState(), rec.invoke, time.UTC, time.Second)

	if err := c.AddRecurring(trigger.Recurring{ID: "poller", Spec: "* * * * *", Payload: []byte(`{"task":"poller"}`), Toggled: true}); err != nil {
		t.Fatalf("AddRecurring failed: %v", err)
	}

	if c.Fire("poller") {
		t.Error("Expected disabled trigger not to fire")
	}

	if err := c.Enable(ctx, "poller"); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if !c.Fire("poller") {
		t.Error("Expected enabled trigger to fire")
	}

	if err := c.Disable(ctx, "poller"); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if c.Fire("poller") {
		t.Error("Expected trigger to stop firing once disabled")
	}

	if rec.count() != 1 {
		t.Errorf("Expected 1 invocation, got %d", rec.count())
	}
}

func TestCronController_AlwaysOnTrigger(t *testing.T) {
	rec := newRecorder()
	c := trigger.NewCronController(trigger.NewMemoryState(), rec.invoke, time.UTC, 0)

	if err := c.AddRecurring(trigger.Recurring{ID: "manager", Spec: "0 12 * * *", Payload: []byte(`{"task":"manager"}`)}); err != nil {
		t.Fatalf("AddRecurring failed: %v", err)
	}
	if !c.Fire("manager") {
		t.Error("Expected untoggled trigger to fire")
	}
	if c.Fire("unknown") {
		t.Error("Expected unknown trigger not to fire")
	}
}

func TestCronController_InvalidSpec(t *testing.T) {
	c := trigger.NewCronController(trigger.NewMemoryState(), newRecorder().invoke, time.UTC, 0)
	if err := c.AddRecurring(trigger.Recurring{ID: "bad", Spec: "not a spec"}); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
	if err := c.AddRecurring(trigger.Recurring{Spec: "* * * * *"}); err == nil {
		t.Error("Expected error for missing id")
	}
}

func TestCronController_ScheduleOnce(t *testing.T) {
	ctx := context.Background()
	state := trigger.NewMemoryState()
	rec := newRecorder()
	c := trigger.NewCronController(state, rec.invoke, time.UTC, time.Second)

	if err := c.ScheduleOnce(ctx, "kickoff", time.Now().Add(-time.Second), []byte(`{"task":"kickoff"}`)); err != nil {
		t.Fatalf("ScheduleOnce failed: %v", err)
	}

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected past one-shot to fire immediately")
	}

	jobs, _ := state.LoadOnce(ctx)
	if _, ok := jobs["kickoff"]; ok {
		t.Error("Expected fired one-shot to be cleared from state")
	}
}

func TestCronController_CancelScheduled(t *testing.T) {
	ctx := context.Background()
	state := trigger.NewMemoryState()
	rec := newRecorder()
	c := trigger.NewCronController(state, rec.invoke, time.UTC, 0)

	if err := c.ScheduleOnce(ctx, "kickoff", time.Now().Add(time.Hour), nil); err != nil {
		t.Fatalf("ScheduleOnce failed: %v", err)
	}
	jobs, _ := state.LoadOnce(ctx)
	if _, ok := jobs["kickoff"]; !ok {
		t.Fatal("Expected one-shot to be persisted")
	}

	if err := c.CancelScheduled(ctx, "kickoff"); err != nil {
		t.Fatalf("CancelScheduled failed: %v", err)
	}
	if err := c.CancelScheduled(ctx, "kickoff"); err != nil {
		t.Errorf("Expected cancelling a missing trigger to succeed, got %v", err)
	}

	jobs, _ = state.LoadOnce(ctx)
	if len(jobs) != 0 {
		t.Errorf("Expected no pending one-shots, got %d", len(jobs))
	}
	if rec.count() != 0 {
		t.Errorf("Expected cancelled one-shot not to fire, got %d invocations", rec.count())
	}
}

func TestCronController_StartRestoresOnce(t *testing.T) {
	ctx := context.Background()
	state := trigger.NewMemoryState()
	_ = state.SaveOnce(ctx, "kickoff", trigger.OnceJob{At: time.Now().Add(-time.Minute), Payload: []byte("restored")})

	rec := newRecorder()
	c := trigger.NewCronController(state, rec.invoke, time.UTC, time.Second)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop()

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected restored one-shot to fire")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.payloads[0] != "restored" {
		t.Errorf("Expected restored payload, got %q", rec.payloads[0])
	}
}
