package task_scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Governor paces task admissions with a minimum delay between consecutive
// task starts, measured from the previous task's start time rather than its
// completion. Throughput is therefore independent of task duration.
//
// The governor does not retry failed tasks; retry composes at a higher layer
// so a retried call re-enters admission without double-queuing.
type Governor struct {
	limiter *rate.Limiter
}

// NewGovernor creates a governor with the given minimum inter-start interval.
// A non-positive interval disables pacing.
func NewGovernor(minInterval time.Duration) *Governor {
	if minInterval <= 0 {
		return &Governor{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Governor{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Admit blocks until the task may start, or until the context is cancelled.
func (g *Governor) Admit(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Run admits and then executes the task. The task's error is returned to the
// caller untouched.
func (g *Governor) Run(ctx context.Context, task func() error) error {
	if err := g.Admit(ctx); err != nil {
		return err
	}
	return task()
}
