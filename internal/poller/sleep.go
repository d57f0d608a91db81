package poller

import (
	"context"
	"math"
	"math/rand"
	"time"
)

const (
	minSleep       = 1.0
	maxSleep       = 3.0
	reserveBuffer  = 5.0 // seconds kept back for teardown and final uploads
	workPerGame    = 1.5 // estimated seconds of network work per remaining game
	minUsefulSleep = 0.2
)

// Budget reports how much wall-clock time the current invocation has left
type Budget interface {
	RemainingTime() time.Duration
}

// DeadlineBudget is a Budget ending at a fixed deadline
type DeadlineBudget struct {
	Deadline time.Time
	Now      func() time.Time
}

// RemainingTime implements Budget
func (b DeadlineBudget) RemainingTime() time.Duration {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return b.Deadline.Sub(now())
}

// BudgetFromContext returns a Budget for the context deadline, or nil when there is none
func BudgetFromContext(ctx context.Context) Budget {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	return DeadlineBudget{Deadline: deadline}
}

// CalculateSleep returns the pause in seconds after game index of total. It shares whatever
// budget is left after the reserve and the estimated remaining work across the remaining gaps.
// Without a budget it returns a uniform pause in [1, 3].
func CalculateSleep(budget Budget, index, total int, rnd *rand.Rand) float64 {
	if budget == nil {
		return uniform(rnd, minSleep, maxSleep)
	}

	remaining := budget.RemainingTime().Seconds()
	itemsRemaining := total - 1 - index
	sleepBudget := remaining - float64(itemsRemaining)*workPerGame - reserveBuffer
	if sleepBudget <= 0 || itemsRemaining < 1 {
		return 0
	}

	upper := math.Min(maxSleep, sleepBudget/float64(itemsRemaining))
	if upper < minUsefulSleep {
		return 0
	}
	lower := math.Min(minSleep, upper)
	return uniform(rnd, lower, upper)
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	if rnd == nil {
		return lo + rand.Float64()*(hi-lo)
	}
	return lo + rnd.Float64()*(hi-lo)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// sleepContext pauses for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
