// Package headlinegoat provides a public SDK for embedding HeadlineGoat as a library.
//
// Example usage:
//
//	client, err := headlinegoat.New(
//	    headlinegoat.WithConcurrency(5),
//	    headlinegoat.WithKeyword("ransomware"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	report := client.Scrape(ctx, "The Hacker News", "BleepingComputer")
//	fmt.Println(report.Text())
package headlinegoat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/engine"
	"github.com/IshaanNene/HeadlineGoat/internal/monitor"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/pipeline"
	"github.com/IshaanNene/HeadlineGoat/internal/storage"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Re-exported result types.
type (
	Report     = types.Report
	SiteResult = types.SiteResult
	Headline   = types.Headline
	Target     = types.Target
)

// Client is the high-level API for using HeadlineGoat as a library.
type Client struct {
	engine   *engine.Engine
	registry *parser.Registry
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*config.Config)

// WithConcurrency sets the number of sites scraped at once.
func WithConcurrency(n int) Option {
	return func(c *config.Config) { c.Engine.Concurrency = n }
}

// WithMaxItems caps the headlines kept per site. It must be between 1 and 30.
func WithMaxItems(n int) Option {
	return func(c *config.Config) { c.Engine.MaxItems = n }
}

// WithTimeout sets the per-attempt fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.Fetcher.Timeout = d }
}

// WithRetries sets how many times a failed fetch is retried.
func WithRetries(n int) Option {
	return func(c *config.Config) { c.Fetcher.MaxRetries = n }
}

// WithDelay sets the politeness delay between requests to one host.
func WithDelay(d time.Duration) Option {
	return func(c *config.Config) { c.Fetcher.PolitenessDelay = d }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Fetcher.UserAgent = ua }
}

// WithKeyword keeps only headlines whose title contains keyword.
func WithKeyword(keyword string) Option {
	return func(c *config.Config) { c.Pipeline.Keyword = keyword }
}

// WithSite registers an extra site extracted with the given CSS selectors.
func WithSite(name, url string, selectors ...string) Option {
	return func(c *config.Config) {
		c.Parser.Sites = append(c.Parser.Sites, config.SiteConfig{
			Name:      name,
			URL:       url,
			Selectors: selectors,
		})
	}
}

// WithOutput exports every report to path in the given format (json, jsonl, yaml, csv).
func WithOutput(format, path string) Option {
	return func(c *config.Config) {
		c.Storage.Type = format
		c.Storage.OutputPath = path
	}
}

// WithStructureMonitor records each site's page structure signature in dir
// and logs a warning when a site's layout changes between runs.
func WithStructureMonitor(dir string) Option {
	return func(c *config.Config) { c.Monitor.SnapshotDir = dir }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	eng, registry, err := engine.Build(cfg, logger, nil)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		eng.SetStorage(store)
	}

	detector, err := monitor.New(&cfg.Monitor, logger)
	if err != nil {
		_ = eng.Close()
		return nil, err
	}
	if detector != nil {
		eng.AddMarkupSink(detector)
	}

	return &Client{engine: eng, registry: registry, logger: logger}, nil
}

// Sites returns the names of the registered sites.
func (c *Client) Sites() []string {
	sites := c.registry.Sites()
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		names = append(names, s.Name)
	}
	return names
}

// Scrape looks up each site by name or domain and scrapes them concurrently.
// Names that cannot be turned into a target are logged and skipped.
func (c *Client) Scrape(ctx context.Context, sites ...string) *Report {
	targets := make([]Target, 0, len(sites))
	for _, name := range sites {
		t, err := c.registry.Lookup(name)
		if err != nil {
			c.logger.Warn("site skipped", "site", name, "error", err)
			continue
		}
		targets = append(targets, t)
	}
	return c.engine.ScrapeAll(ctx, targets)
}

// ScrapeURLs scrapes explicit page URLs.
func (c *Client) ScrapeURLs(ctx context.Context, urls ...string) (*Report, error) {
	targets := make([]Target, 0, len(urls))
	for _, raw := range urls {
		t, err := types.NewTarget("", raw)
		if err != nil {
			return nil, err
		}
		if site := c.registry.Resolve(t); site != nil {
			t.Name = site.Name
		}
		targets = append(targets, t)
	}
	return c.engine.ScrapeAll(ctx, targets), nil
}

// Filter scrapes sites keeping only headlines that match keyword, without
// changing the client's configured filter.
func (c *Client) Filter(ctx context.Context, keyword string, sites ...string) (*Report, error) {
	mw, err := pipeline.NewKeywordFilterMiddleware(keyword)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, 0, len(sites))
	for _, name := range sites {
		t, err := c.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return c.engine.ScrapeAll(ctx, targets, engine.WithMiddleware(mw)), nil
}

// Stats returns cumulative scrape statistics.
func (c *Client) Stats() map[string]any {
	return c.engine.Stats().Snapshot()
}

// Close releases the fetcher and storage.
func (c *Client) Close() error {
	return c.engine.Close()
}
