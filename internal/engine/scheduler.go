package engine

import (
	"context"
	"log/slog"
	"sync"
)

// Scheduler runs a fixed number of workers over an index queue. Each job is
// handed exactly one index; work beyond the pool size waits in the queue.
type Scheduler struct {
	workers int
	logger  *slog.Logger
}

// NewScheduler creates a scheduler with the given pool size (at least 1).
func NewScheduler(workers int, logger *slog.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		workers: workers,
		logger:  logger.With("component", "scheduler"),
	}
}

// Run calls job(ctx, i) for every i in [0, n) and returns when all calls have
// finished. It never stops early or cancels sibling jobs, and is safe for
// concurrent use.
func (s *Scheduler) Run(ctx context.Context, n int, job func(ctx context.Context, idx int)) {
	if n == 0 {
		return
	}

	workers := min(s.workers, n)
	queue := make(chan int, n)
	for i := 0; i < n; i++ {
		queue <- i
	}
	close(queue)

	s.logger.Debug("starting worker pool", "workers", workers, "jobs", n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id, queue, job)
		}(w)
	}
	wg.Wait()
}

func (s *Scheduler) worker(ctx context.Context, id int, queue <-chan int, job func(context.Context, int)) {
	for idx := range queue {
		s.logger.Debug("job picked", "worker_id", id, "index", idx)
		job(ctx, idx)
	}
}
