package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for HeadlineGoat.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"   yaml:"engine"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Parser   ParserConfig   `mapstructure:"parser"   yaml:"parser"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Monitor  MonitorConfig  `mapstructure:"monitor"  yaml:"monitor"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// EngineConfig controls the orchestrator.
type EngineConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	MaxItems    int `mapstructure:"max_items"   yaml:"max_items"`
}

// FetcherConfig controls the retrying fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // http, resty
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	BackoffBase     time.Duration `mapstructure:"backoff_base"      yaml:"backoff_base"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay"  yaml:"politeness_delay"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	Accept          string        `mapstructure:"accept"            yaml:"accept"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Proxies         []string      `mapstructure:"proxies"           yaml:"proxies"`
	ProxyRotation   string        `mapstructure:"proxy_rotation"    yaml:"proxy_rotation"` // round_robin, random
}

// ParserConfig controls the extractor registry.
type ParserConfig struct {
	// AllowGeneric enables the generic heading strategy for sites with no registered strategies.
	AllowGeneric bool         `mapstructure:"allow_generic" yaml:"allow_generic"`
	Sites        []SiteConfig `mapstructure:"sites"         yaml:"sites"`
}

// SiteConfig declares an extra site with its own ordered selectors.
type SiteConfig struct {
	Name      string   `mapstructure:"name"      yaml:"name"`
	URL       string   `mapstructure:"url"       yaml:"url"`
	Type      string   `mapstructure:"type"      yaml:"type"` // css, xpath
	Selectors []string `mapstructure:"selectors" yaml:"selectors"`
	Content   string   `mapstructure:"content"   yaml:"content"`
}

// PipelineConfig controls headline post-processing.
type PipelineConfig struct {
	Keyword     string `mapstructure:"keyword"       yaml:"keyword"`
	StripHTML   bool   `mapstructure:"strip_html"    yaml:"strip_html"`
	MaxTitleLen int    `mapstructure:"max_title_len" yaml:"max_title_len"`
}

// StorageConfig controls report export.
type StorageConfig struct {
	Type       string `mapstructure:"type"        yaml:"type"` // none, json, jsonl, yaml, csv, mongodb; comma separated for several
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	RawDir     string `mapstructure:"raw_dir"     yaml:"raw_dir"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"    yaml:"mongo_db"`
	MongoColl  string `mapstructure:"mongo_coll"  yaml:"mongo_coll"`
}

// APIConfig controls the HTTP API.
type APIConfig struct {
	Port         int      `mapstructure:"port"          yaml:"port"`
	DailyLimit   int      `mapstructure:"daily_limit"   yaml:"daily_limit"`
	QuotaPath    string   `mapstructure:"quota_path"    yaml:"quota_path"`
	AllowedSites []string `mapstructure:"allowed_sites" yaml:"allowed_sites"`
	DefaultSite  string   `mapstructure:"default_site"  yaml:"default_site"`
}

// MonitorConfig controls page structure change detection.
type MonitorConfig struct {
	// SnapshotDir holds the last seen structure signature per site; empty disables the monitor.
	SnapshotDir string        `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
	WebhookURL  string        `mapstructure:"webhook_url"  yaml:"webhook_url"`
	Timeout     time.Duration `mapstructure:"timeout"      yaml:"timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// MaxItemsLimit is the most headlines a site result may carry.
const MaxItemsLimit = 30

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Concurrency: 10,
			MaxItems:    MaxItemsLimit,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			Timeout:         15 * time.Second,
			MaxRetries:      2,
			BackoffBase:     500 * time.Millisecond,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			AcceptLanguage:  "en-US,en;q=0.9",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			ProxyRotation:   "round_robin",
		},
		Parser: ParserConfig{
			AllowGeneric: true,
		},
		Pipeline: PipelineConfig{
			StripHTML: true,
		},
		Storage: StorageConfig{
			Type:       "none",
			OutputPath: "./output/report.json",
			MongoDB:    "headlinegoat",
			MongoColl:  "reports",
		},
		API: APIConfig{
			Port:        8080,
			DailyLimit:  100,
			DefaultSite: "The Hacker News",
		},
		Monitor: MonitorConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
