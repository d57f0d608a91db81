package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/feed"
	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/internal/trigger"
)

// Fetcher performs conditional feed requests
type Fetcher interface {
	Fetch(ctx context.Context, url, etag, identity string) feed.Result
}

// Config holds the poller's trigger names and tuning
type Config struct {
	PollerTrigger  string
	KickoffTrigger string
	ReconcileDays  int
	IncludeEvents  bool
}

// ErrPollInProgress is returned when a poll is requested while another is running
var ErrPollInProgress = errors.New("poll already in progress")

// DefaultReconcileDays is how many days back the manager reconciles schedules
const DefaultReconcileDays = 3

// Deps are the collaborators a Service drives
type Deps struct {
	Artifacts  *storage.Artifacts
	Fetcher    Fetcher
	Triggers   trigger.Controller
	Identities feed.Identities
	URLs       feed.URLs

	// Optional; real time and randomness are used when nil
	Now   func() time.Time
	Rand  *rand.Rand
	Sleep func(ctx context.Context, d time.Duration) error
}

// Service runs manager, kickoff and poll invocations
type Service struct {
	artifacts  *storage.Artifacts
	fetcher    Fetcher
	triggers   trigger.Controller
	identities feed.Identities
	urls       feed.URLs
	cfg        Config

	now   func() time.Time
	rnd   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error

	polling sync.Mutex
}

// New creates a poller service
func New(deps Deps, cfg Config) *Service {
	if cfg.ReconcileDays < 0 {
		cfg.ReconcileDays = 0
	}
	s := &Service{
		artifacts:  deps.Artifacts,
		fetcher:    deps.Fetcher,
		triggers:   deps.Triggers,
		identities: deps.Identities,
		urls:       deps.URLs,
		cfg:        cfg,
		now:        deps.Now,
		rnd:        deps.Rand,
		sleep:      deps.Sleep,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	return s
}

// Dispatch runs one invocation of the given task
func (s *Service) Dispatch(ctx context.Context, task Task) error {
	log.Printf("[poller] execution started with task: %s", task.Name())

	switch t := task.(type) {
	case ManagerTask:
		return s.manage(ctx)
	case KickoffTask:
		return s.kickoff(ctx)
	case PollTask:
		if !s.polling.TryLock() {
			return ErrPollInProgress
		}
		defer s.polling.Unlock()
		budget := t.Budget
		if budget == nil {
			budget = BudgetFromContext(ctx)
		}
		return s.poll(ctx, budget)
	case ScoreboardTask:
		return s.refreshScoreboard(ctx)
	default:
		return fmt.Errorf("unsupported task %T", task)
	}
}

// Invoke decodes a trigger payload and dispatches it
func (s *Service) Invoke(ctx context.Context, payload []byte) error {
	task, err := DecodeTask(payload)
	if err != nil {
		return err
	}
	return s.Dispatch(ctx, task)
}

func (s *Service) validate() error {
	var missing []error
	if s.artifacts == nil {
		missing = append(missing, errors.New("artifact store not configured"))
	}
	if s.triggers == nil {
		missing = append(missing, errors.New("trigger controller not configured"))
	}
	if s.cfg.PollerTrigger == "" {
		missing = append(missing, errors.New("poller trigger name not configured"))
	}
	return errors.Join(missing...)
}

func (s *Service) today() string {
	return schedule.LeagueDate(s.now())
}
