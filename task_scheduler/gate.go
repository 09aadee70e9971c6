package task_scheduler

import (
	"context"
	"sync"
)

// Gate is a counting semaphore bounding simultaneous task execution. Two
// independent gates exist per run: one for files in flight and one for AI
// requests in flight, so a slow file never starves request throughput.
type Gate struct {
	sem chan struct{}
}

// NewGate creates a gate admitting at most limit concurrent tasks.
func NewGate(limit int) *Gate {
	if limit <= 0 {
		limit = 1
	}
	return &Gate{sem: make(chan struct{}, limit)}
}

// Execute runs task once a slot is free, queuing when at capacity. A
// cancelled context while queued returns ctx.Err() without running the task.
func (g *Gate) Execute(ctx context.Context, task func() error) error {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.sem }()
	return task()
}

// ExecuteAll runs every task under the gate's bound and returns their errors
// in input order.
func (g *Gate) ExecuteAll(ctx context.Context, tasks []func() error) []error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func() error) {
			defer wg.Done()
			errs[i] = g.Execute(ctx, task)
		}(i, task)
	}
	wg.Wait()
	return errs
}

// Limit returns the configured maximum.
func (g *Gate) Limit() int {
	return cap(g.sem)
}
