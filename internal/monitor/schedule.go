package monitor

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler repeats a run at a fixed interval.
type Scheduler struct {
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler with the given interval.
func NewScheduler(interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		logger:   logger.With("component", "run_scheduler"),
	}
}

// Run calls fn immediately and then once per interval until ctx is done.
// Ticks that fire while fn is still running are dropped.
func (s *Scheduler) Run(ctx context.Context, fn func(ctx context.Context)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	runs := 1
	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", "runs", runs)
			return
		case <-ticker.C:
			runs++
			s.logger.Debug("scheduled run", "n", runs)
			fn(ctx)
		}
	}
}
