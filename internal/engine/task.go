package engine

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/HeadlineGoat/internal/pipeline"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// TaskState is a site task's lifecycle stage.
type TaskState int

const (
	TaskQueued TaskState = iota
	TaskFetching
	TaskFetchFailed
	TaskFetched
	TaskExtracting
	TaskExtractFailed
	TaskExtracted
	TaskDeduped
)

func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "queued"
	case TaskFetching:
		return "fetching"
	case TaskFetchFailed:
		return "fetch_failed"
	case TaskFetched:
		return "fetched"
	case TaskExtracting:
		return "extracting"
	case TaskExtractFailed:
		return "extract_failed"
	case TaskExtracted:
		return "extracted"
	case TaskDeduped:
		return "deduped"
	default:
		return "unknown"
	}
}

// scrapeSite fetches, extracts, filters and dedupes one target. Every path,
// including a panic, ends in a SiteResult.
func (e *Engine) scrapeSite(ctx context.Context, t types.Target, p *pipeline.Pipeline, runLogger *slog.Logger) (res types.SiteResult) {
	logger := runLogger.With("site", t.Name, "url", t.URL)
	state := func(s TaskState, args ...any) {
		logger.Debug("task "+s.String(), args...)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("site task panicked", "panic", r)
			res = types.FailedSiteResult(t, types.TagParseFailed)
		}
		e.stats.SitesScraped.Add(1)
		if !res.OK {
			e.stats.SitesFailed.Add(1)
		}
		e.stats.ItemsScraped.Add(int64(len(res.Items)))
		e.metrics.ObserveSiteResult(t.Name, res.OK, res.Error, len(res.Items))
	}()

	state(TaskQueued)
	state(TaskFetching)
	outcome := e.fetcher.Fetch(ctx, t.URL)
	if !outcome.Ok() {
		e.stats.FetchFailures.Add(1)
		state(TaskFetchFailed, "attempts", outcome.Attempts)
		logger.Warn("fetch failed", "error", outcome.Detail())
		return types.FailedSiteResult(t, types.TagFetchFailed)
	}
	state(TaskFetched, "attempts", outcome.Attempts, "bytes", len(outcome.Body))

	e.mu.RLock()
	sinks := e.markup
	e.mu.RUnlock()
	for _, sink := range sinks {
		if err := sink.SaveMarkup(ctx, t, outcome.Body); err != nil {
			logger.Warn("markup not saved", "error", err)
		}
	}

	state(TaskExtracting)
	x := e.extractor.Extract(t, outcome.Body)
	e.metrics.ObserveExtraction(x.Kind.String(), x.Strategy)
	if x.Tag != "" {
		logger.Info("extraction fell back", "diagnostic", x.Diagnostic(), "records", len(x.Records))
	}
	if len(x.Records) == 0 {
		state(TaskExtractFailed, "tag", x.Tag)
		return types.FailedSiteResult(t, x.Tag)
	}
	state(TaskExtracted, "strategy", x.Strategy, "records", len(x.Records))

	kept := x.Records
	if p != nil {
		kept = p.Run(x.Records)
	}
	items := Dedupe(kept, e.cfg.MaxItems)
	e.stats.ItemsDropped.Add(int64(len(x.Records) - len(items)))
	state(TaskDeduped, "items", len(items), "dropped", len(x.Records)-len(items))

	tag := x.Tag
	if len(items) == 0 && tag == "" {
		tag = types.TagNoRecords
	}
	return types.NewSiteResult(t, items, tag)
}

