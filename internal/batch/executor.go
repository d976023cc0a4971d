package batch

import (
	"context"
	"fmt"
	"time"

	"climindex/internal"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is one unit of work with a computational cost.
type Task struct {
	Name string
	Cost int64
	Run  func(ctx context.Context) error
}

// Executor runs tasks concurrently, throttled by a weighted semaphore so that
// expensive tasks take a larger share of the capacity.
type Executor struct {
	semaphore  *semaphore.Weighted
	capacity   int64
	maxTimeout time.Duration
	logger     *internal.Logger
}

// NewExecutor creates an executor with the given total capacity
func NewExecutor(capacity int, logger *internal.Logger) *Executor {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Executor{
		semaphore:  semaphore.NewWeighted(int64(capacity)),
		capacity:   int64(capacity),
		maxTimeout: 5 * time.Minute, // Maximum time to wait for capacity
		logger:     logger,
	}
}

// Capacity returns the total semaphore weight.
func (e *Executor) Capacity() int64 { return e.capacity }

// Execute runs every task and returns their errors by position. A failing task
// does not stop the others. The second return value is set only when capacity
// could not be acquired, typically because ctx was cancelled.
func (e *Executor) Execute(ctx context.Context, tasks []Task) ([]error, error) {
	errs := make([]error, len(tasks))
	g, gctx := errgroup.WithContext(ctx)

	for i, task := range tasks {
		i, task := i, task
		cost := e.costOf(task)

		g.Go(func() error {
			waitCtx, cancel := context.WithTimeout(gctx, e.maxTimeout)
			defer cancel()
			if err := e.semaphore.Acquire(waitCtx, cost); err != nil {
				errs[i] = fmt.Errorf("timeout waiting for computational capacity for %s: %w", task.Name, err)
				return errs[i]
			}
			defer e.semaphore.Release(cost)

			start := time.Now()
			errs[i] = task.Run(gctx)
			if errs[i] != nil {
				e.logger.Warn("[BatchExecutor] %s failed (cost: %d, duration: %v): %v", task.Name, cost, time.Since(start), errs[i])
			} else {
				e.logger.Debug("[BatchExecutor] %s done (cost: %d, duration: %v)", task.Name, cost, time.Since(start))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errs, err
	}
	return errs, nil
}

// costOf clamps a task's cost to [1, capacity]; a cost above capacity would
// never be admitted.
func (e *Executor) costOf(task Task) int64 {
	switch {
	case task.Cost < 1:
		return 1
	case task.Cost > e.capacity:
		return e.capacity
	}
	return task.Cost
}
