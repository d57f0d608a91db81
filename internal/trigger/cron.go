package trigger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Recurring is a cron-driven trigger. Toggled triggers only fire while enabled.
type Recurring struct {
	ID      string
	Spec    string // five-field cron expression
	Payload []byte
	Toggled bool
}

// CronController runs recurring triggers on a cron scheduler and one-shot triggers on timers
type CronController struct {
	cron    *cron.Cron
	state   State
	invoke  Invoker
	timeout time.Duration

	mu        sync.Mutex
	ctx       context.Context
	recurring map[string]Recurring
	timers    map[string]*time.Timer
}

// NewCronController creates a controller. timeout is the hard ceiling for each invocation.
func NewCronController(state State, invoke Invoker, loc *time.Location, timeout time.Duration) *CronController {
	if loc == nil {
		loc = time.UTC
	}
	logger := cron.PrintfLogger(log.New(log.Writer(), "[trigger] ", log.LstdFlags))
	return &CronController{
		cron:      cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		state:     state,
		invoke:    invoke,
		timeout:   timeout,
		ctx:       context.Background(),
		recurring: make(map[string]Recurring),
		timers:    make(map[string]*time.Timer),
	}
}

// AddRecurring registers a recurring trigger
func (c *CronController) AddRecurring(r Recurring) error {
	if r.ID == "" {
		return errors.New("recurring trigger needs an id")
	}
	if _, err := c.cron.AddFunc(r.Spec, func() { c.Fire(r.ID) }); err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", r.ID, r.Spec, err)
	}

	c.mu.Lock()
	c.recurring[r.ID] = r
	c.mu.Unlock()
	return nil
}

// Start restores pending one-shot triggers and starts the scheduler
func (c *CronController) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	jobs, err := c.state.LoadOnce(ctx)
	if err != nil {
		return err
	}
	for id, job := range jobs {
		log.Printf("[trigger] restoring one-shot %s at %s", id, job.At.Format(time.RFC3339))
		c.arm(id, job)
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler and pending timers and waits for running jobs
func (c *CronController) Stop() {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	<-c.cron.Stop().Done()
}

// Fire runs a recurring trigger now if it is enabled. It reports whether the invocation ran.
func (c *CronController) Fire(id string) bool {
	c.mu.Lock()
	r, ok := c.recurring[id]
	ctx := c.ctx
	c.mu.Unlock()
	if !ok {
		return false
	}

	if r.Toggled {
		enabled, err := c.state.Enabled(ctx, id)
		if err != nil {
			log.Printf("[trigger] reading %s: %v", id, err)
			return false
		}
		if !enabled {
			return false
		}
	}

	c.run(id, r.Payload)
	return true
}

func (c *CronController) run(id string, payload []byte) {
	c.mu.Lock()
	base := c.ctx
	c.mu.Unlock()

	ctx := base
	cancel := func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(base, c.timeout)
	}
	defer cancel()

	start := time.Now()
	if err := c.invoke(ctx, payload); err != nil {
		log.Printf("[trigger] %s failed after %v: %v", id, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[trigger] %s completed in %v", id, time.Since(start).Round(time.Millisecond))
}

// Enable switches a recurring trigger on
func (c *CronController) Enable(ctx context.Context, id string) error {
	if err := c.state.SetEnabled(ctx, id, true); err != nil {
		return fmt.Errorf("enabling %s: %w", id, err)
	}
	log.Printf("[trigger] enabled %s", id)
	return nil
}

// Disable switches a recurring trigger off
func (c *CronController) Disable(ctx context.Context, id string) error {
	if err := c.state.SetEnabled(ctx, id, false); err != nil {
		return fmt.Errorf("disabling %s: %w", id, err)
	}
	log.Printf("[trigger] disabled %s", id)
	return nil
}

// ScheduleOnce arms a one-shot trigger, replacing any pending one with the same id.
// A time in the past fires immediately.
func (c *CronController) ScheduleOnce(ctx context.Context, id string, at time.Time, payload []byte) error {
	job := OnceJob{At: at, Payload: payload}
	if err := c.state.SaveOnce(ctx, id, job); err != nil {
		return fmt.Errorf("saving one-shot %s: %w", id, err)
	}
	c.arm(id, job)
	log.Printf("[trigger] one-shot %s armed for %s", id, at.Format(time.RFC3339))
	return nil
}

// CancelScheduled removes a pending one-shot trigger. Cancelling a missing trigger is not an error.
func (c *CronController) CancelScheduled(ctx context.Context, id string) error {
	c.disarm(id)
	if err := c.state.DeleteOnce(ctx, id); err != nil {
		return fmt.Errorf("deleting one-shot %s: %w", id, err)
	}
	return nil
}

func (c *CronController) arm(id string, job OnceJob) {
	delay := time.Until(job.At)
	if delay < 0 {
		delay = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		current := c.timers[id] == timer
		if current {
			delete(c.timers, id)
		}
		ctx := c.ctx
		c.mu.Unlock()
		if !current {
			return
		}

		if err := c.state.DeleteOnce(ctx, id); err != nil {
			log.Printf("[trigger] clearing one-shot %s: %v", id, err)
		}
		c.run(id, job.Payload)
	})
	c.timers[id] = timer
}

func (c *CronController) disarm(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
}
