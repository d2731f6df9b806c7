package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/observability"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Retrier wraps a single-attempt Fetcher with the attempt schedule:
// maxRetries+1 attempts, each under its own deadline, separated by
// base*2^n delays. It always returns an outcome value.
type Retrier struct {
	fetcher    Fetcher
	maxRetries int
	base       time.Duration
	timeout    time.Duration
	limiter    *HostLimiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithHostLimiter applies per-host politeness before each attempt.
func WithHostLimiter(l *HostLimiter) RetrierOption {
	return func(r *Retrier) { r.limiter = l }
}

// WithMetrics records attempts and retries.
func WithMetrics(m *observability.Metrics) RetrierOption {
	return func(r *Retrier) { r.metrics = m }
}

// NewRetrier creates a Retrier using the fetcher config schedule.
func NewRetrier(f Fetcher, cfg *config.FetcherConfig, logger *slog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		fetcher:    f,
		maxRetries: cfg.MaxRetries,
		base:       cfg.BackoffBase,
		timeout:    cfg.Timeout,
		logger:     logger.With("component", "retrier", "fetcher", f.Type()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch retrieves rawURL, retrying transport errors, timeouts and non-2xx
// statuses. It never panics; every failure is reported as a FetchFailed outcome.
func (r *Retrier) Fetch(ctx context.Context, rawURL string) (out types.FetchOutcome) {
	host := hostOf(rawURL)
	start := time.Now()
	attempts := 0

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("fetcher panicked", "url", rawURL, "panic", p)
			out = types.Failed(&types.FetchError{URL: rawURL, Attempts: attempts, Err: fmt.Errorf("panic: %v", p)})
		}
		r.metrics.ObserveFetch(host, out.Ok(), time.Since(start))
	}()

	var resp *types.Response
	operation := func() error {
		if err := r.limiter.Wait(ctx, host); err != nil {
			return backoff.Permanent(err)
		}

		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		res, err := r.fetcher.Fetch(attemptCtx, rawURL)
		if err != nil {
			var fe *types.FetchError
			status := 0
			if errors.As(err, &fe) {
				status = fe.StatusCode
			}
			r.metrics.ObserveAttempt(host, status)

			// The caller gave up; later attempts would fail the same way.
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			if fe != nil && !fe.IsRetryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		r.metrics.ObserveAttempt(host, res.StatusCode)
		resp = res
		return nil
	}

	notify := func(err error, next time.Duration) {
		r.metrics.ObserveRetry(host)
		r.logger.Warn("retrying fetch",
			"url", rawURL,
			"attempt", attempts,
			"max_retries", r.maxRetries,
			"backoff", next,
			"error", err,
		)
	}

	schedule := backoff.WithContext(backoff.WithMaxRetries(r.schedule(), uint64(r.maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, schedule, notify); err != nil {
		r.logger.Error("fetch failed", "url", rawURL, "attempts", attempts, "error", err)
		return types.Failed(asFetchError(rawURL, attempts, err))
	}

	return types.Succeeded(string(resp.Body), resp.FinalURL, attempts)
}

// Close closes the underlying fetcher.
func (r *Retrier) Close() error {
	return r.fetcher.Close()
}

// schedule returns base*2^n delays with no jitter and no elapsed-time cap;
// the attempt count is bounded by WithMaxRetries.
func (r *Retrier) schedule() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.MaxInterval = r.base * time.Duration(math.Pow(2, float64(r.maxRetries)))
	b.Reset()
	return b
}

// Delays lists the sleep before each retry, e.g. [500ms 1s] for two retries.
func (r *Retrier) Delays() []time.Duration {
	b := r.schedule()
	delays := make([]time.Duration, 0, r.maxRetries)
	for i := 0; i < r.maxRetries; i++ {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

// asFetchError normalizes any terminal error into a FetchError carrying the attempt count.
func asFetchError(rawURL string, attempts int, err error) *types.FetchError {
	var fe *types.FetchError
	if errors.As(err, &fe) {
		copied := *fe
		copied.Attempts = attempts
		return &copied
	}
	return &types.FetchError{URL: rawURL, Attempts: attempts, Err: err}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
