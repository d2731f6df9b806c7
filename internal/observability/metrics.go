package observability

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for fetches, extraction and runs.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	fetchRetries  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	siteResults   *prometheus.CounterVec
	extractions   *prometheus.CounterVec
	itemsScraped  *prometheus.CounterVec
	activeTasks   prometheus.Gauge
	runDuration   prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	quotaRejected prometheus.Counter

	logger *slog.Logger
}

// NewMetrics creates a Metrics instance backed by its own registry.
func NewMetrics(logger *slog.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_fetch_attempts_total",
			Help: "Fetch attempts by host and status code (0 = transport error).",
		}, []string{"host", "status"}),
		fetchRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_fetch_retries_total",
			Help: "Retries scheduled after a failed attempt.",
		}, []string{"host"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "headlinegoat_fetch_duration_seconds",
			Help:    "Duration of a full retrying fetch.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
		}, []string{"host", "outcome"}),
		siteResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_site_results_total",
			Help: "Site results by ok flag and error tag.",
		}, []string{"ok", "error"}),
		extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_extractions_total",
			Help: "Extraction runs by site kind and the strategy that produced the records.",
		}, []string{"kind", "strategy"}),
		itemsScraped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_items_scraped_total",
			Help: "Headlines kept after dedup, by site.",
		}, []string{"site"}),
		activeTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "headlinegoat_active_tasks",
			Help: "Site scrape tasks currently holding a worker slot.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "headlinegoat_run_duration_seconds",
			Help:    "Duration of a full orchestration run.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlinegoat_http_requests_total",
			Help: "API requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "headlinegoat_http_request_duration_seconds",
			Help:    "API request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quotaRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "headlinegoat_quota_rejected_total",
			Help: "API requests rejected by the daily quota.",
		}),
		logger: logger.With("component", "metrics"),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAttempt records one fetch attempt. status is 0 for transport errors.
func (m *Metrics) ObserveAttempt(host string, status int) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(host, strconv.Itoa(status)).Inc()
}

// ObserveRetry records a scheduled retry.
func (m *Metrics) ObserveRetry(host string) {
	if m == nil {
		return
	}
	m.fetchRetries.WithLabelValues(host).Inc()
}

// ObserveFetch records the duration of a full retrying fetch.
func (m *Metrics) ObserveFetch(host string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.fetchDuration.WithLabelValues(host, outcome).Observe(d.Seconds())
}

// ObserveExtraction records which strategy produced records for a site kind.
func (m *Metrics) ObserveExtraction(kind, strategy string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(kind, strategy).Inc()
}

// ObserveSiteResult records a finished site task.
func (m *Metrics) ObserveSiteResult(site string, ok bool, errTag string, items int) {
	if m == nil {
		return
	}
	m.siteResults.WithLabelValues(strconv.FormatBool(ok), errTag).Inc()
	m.itemsScraped.WithLabelValues(site).Add(float64(items))
}

// TaskStarted and TaskFinished track worker slot occupancy.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.activeTasks.Inc()
}

func (m *Metrics) TaskFinished() {
	if m == nil {
		return
	}
	m.activeTasks.Dec()
}

// ObserveRun records the duration of an orchestration run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// ObserveHTTP records an API request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// QuotaRejected counts a request refused by the daily quota.
func (m *Metrics) QuotaRejected() {
	if m == nil {
		return
	}
	m.quotaRejected.Inc()
	m.logger.Debug("quota rejection recorded")
}
