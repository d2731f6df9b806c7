// Package engine runs site scrape tasks over a bounded worker pool and
// aggregates their results into a report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/fetcher"
	"github.com/IshaanNene/HeadlineGoat/internal/observability"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/pipeline"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Stats tracks scrape statistics across runs.
type Stats struct {
	Runs          atomic.Int64
	SitesScraped  atomic.Int64
	SitesFailed   atomic.Int64
	FetchFailures atomic.Int64
	ItemsScraped  atomic.Int64
	ItemsDropped  atomic.Int64
	ActiveTasks   atomic.Int32
	StartTime     time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"runs":           s.Runs.Load(),
		"sites_scraped":  s.SitesScraped.Load(),
		"sites_failed":   s.SitesFailed.Load(),
		"fetch_failures": s.FetchFailures.Load(),
		"items_scraped":  s.ItemsScraped.Load(),
		"items_dropped":  s.ItemsDropped.Load(),
		"active_tasks":   s.ActiveTasks.Load(),
		"uptime":         time.Since(s.StartTime).String(),
	}
}

// Fetcher retrieves a page, retrying internally. It reports failure as a value.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) types.FetchOutcome
	Close() error
}

// Extractor turns markup into records for a target.
type Extractor interface {
	Extract(t types.Target, markup string) parser.Extraction
}

// MarkupSink receives raw fetched markup. ctx is the running task's context.
type MarkupSink interface {
	SaveMarkup(ctx context.Context, t types.Target, markup string) error
}

// Storage persists finished reports.
type Storage interface {
	Store(ctx context.Context, report *types.Report) error
	Close() error
}

// RunOption customizes a single ScrapeAll call.
type RunOption func(*run)

type run struct {
	pipeline *pipeline.Pipeline
}

// WithMiddleware appends mw to the pipeline for one run only.
func WithMiddleware(mw pipeline.Middleware) RunOption {
	return func(r *run) {
		r.pipeline = r.pipeline.With(mw)
	}
}

// Engine is the scrape orchestrator.
type Engine struct {
	cfg       *config.EngineConfig
	logger    *slog.Logger
	fetcher   Fetcher
	extractor Extractor
	pipeline  *pipeline.Pipeline
	scheduler *Scheduler
	markup    []MarkupSink
	storage   Storage
	metrics   *observability.Metrics
	stats     *Stats

	mu sync.RWMutex
}

// New creates an Engine around a fetcher and an extractor.
func New(cfg *config.EngineConfig, f Fetcher, x Extractor, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "engine"),
		fetcher:   f,
		extractor: x,
		pipeline:  pipeline.New(logger),
		scheduler: NewScheduler(cfg.Concurrency, logger),
		stats:     &Stats{StartTime: time.Now()},
	}
}

// Build wires the engine from configuration: the configured fetcher behind a
// retrier and host limiter, the site registry, and the headline pipeline.
func Build(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Engine, *parser.Registry, error) {
	base, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}
	retrier := fetcher.NewRetrier(base, &cfg.Fetcher, logger,
		fetcher.WithHostLimiter(fetcher.NewHostLimiter(cfg.Fetcher.PolitenessDelay)),
		fetcher.WithMetrics(metrics),
	)

	registry, err := parser.NewRegistry(&cfg.Parser, logger)
	if err != nil {
		_ = retrier.Close()
		return nil, nil, fmt.Errorf("create registry: %w", err)
	}

	p, err := pipeline.FromConfig(&cfg.Pipeline, logger)
	if err != nil {
		_ = retrier.Close()
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}

	e := New(&cfg.Engine, retrier, registry, logger)
	e.SetPipeline(p)
	e.SetMetrics(metrics)
	return e, registry, nil
}

// SetPipeline sets the headline pipeline.
func (e *Engine) SetPipeline(p *pipeline.Pipeline) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pipeline = p
}

// AddMarkupSink registers a receiver for every successfully fetched page.
func (e *Engine) AddMarkupSink(s MarkupSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markup = append(e.markup, s)
}

// SetStorage sets where finished reports are written.
func (e *Engine) SetStorage(s Storage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.storage = s
}

// SetMetrics sets the metrics collector; nil disables metrics.
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = m
}

// Stats returns the scrape statistics.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// ScrapeAll scrapes every target with at most cfg.Concurrency tasks in flight
// and returns the report with results in target order. It always returns a
// report; per-site failures are recorded in the results.
func (e *Engine) ScrapeAll(ctx context.Context, targets []types.Target, opts ...RunOption) *types.Report {
	e.mu.RLock()
	r := &run{pipeline: e.pipeline}
	storage := e.storage
	e.mu.RUnlock()
	for _, opt := range opts {
		opt(r)
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	logger.Info("run starting", "targets", len(targets), "concurrency", e.cfg.Concurrency)

	started := time.Now()
	results := make([]types.SiteResult, len(targets))
	e.scheduler.Run(ctx, len(targets), func(ctx context.Context, idx int) {
		e.stats.ActiveTasks.Add(1)
		e.metrics.TaskStarted()
		defer func() {
			e.stats.ActiveTasks.Add(-1)
			e.metrics.TaskFinished()
		}()
		results[idx] = e.scrapeSite(ctx, targets[idx], r.pipeline, logger)
	})

	report := types.NewReport(results)
	report.RunID = runID
	report.StartedAt = started
	report.FinishedAt = time.Now()
	report.Elapsed = report.FinishedAt.Sub(started)

	e.stats.Runs.Add(1)
	e.metrics.ObserveRun(report.Elapsed)
	logger.Info("run finished",
		"sites", report.Count,
		"succeeded", report.Succeeded(),
		"elapsed", report.Elapsed,
	)

	if storage != nil {
		if err := storage.Store(ctx, report); err != nil {
			logger.Error("storage error", "error", err)
		}
	}
	return report
}

// ScrapeSite runs one site task with the engine's pipeline.
func (e *Engine) ScrapeSite(ctx context.Context, t types.Target) types.SiteResult {
	e.mu.RLock()
	p := e.pipeline
	e.mu.RUnlock()
	return e.scrapeSite(ctx, t, p, e.logger)
}

// Close releases the fetcher and storage.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.fetcher.Close(); err != nil {
		firstErr = err
	}
	e.mu.RLock()
	storage := e.storage
	e.mu.RUnlock()
	if storage != nil {
		if err := storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.logger.Info("engine stopped", "stats", e.stats.Snapshot())
	return firstErr
}
