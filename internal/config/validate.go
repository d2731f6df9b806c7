package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Engine.Concurrency < 1 {
		return fmt.Errorf("engine.concurrency must be >= 1, got %d", cfg.Engine.Concurrency)
	}
	if cfg.Engine.Concurrency > 1000 {
		return fmt.Errorf("engine.concurrency must be <= 1000, got %d", cfg.Engine.Concurrency)
	}
	if cfg.Engine.MaxItems < 1 {
		return fmt.Errorf("engine.max_items must be >= 1, got %d", cfg.Engine.MaxItems)
	}
	if cfg.Engine.MaxItems > MaxItemsLimit {
		return fmt.Errorf("engine.max_items must be <= %d, got %d", MaxItemsLimit, cfg.Engine.MaxItems)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "resty" {
		return fmt.Errorf("fetcher.type must be 'http' or 'resty', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.BackoffBase < 0 {
		return fmt.Errorf("fetcher.backoff_base must be >= 0")
	}
	if cfg.Fetcher.PolitenessDelay < 0 {
		return fmt.Errorf("fetcher.politeness_delay must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if r := cfg.Fetcher.ProxyRotation; r != "" && r != "round_robin" && r != "random" {
		return fmt.Errorf("fetcher.proxy_rotation must be 'round_robin' or 'random', got %q", r)
	}

	for i, site := range cfg.Parser.Sites {
		if site.Name == "" {
			return fmt.Errorf("parser.sites[%d]: name is required", i)
		}
		if err := ValidateURL(site.URL); err != nil {
			return fmt.Errorf("parser.sites[%d] (%s): %w", i, site.Name, err)
		}
		if site.Type != "" && site.Type != "css" && site.Type != "xpath" {
			return fmt.Errorf("parser.sites[%d] (%s): type must be 'css' or 'xpath', got %q", i, site.Name, site.Type)
		}
		if len(site.Selectors) == 0 {
			return fmt.Errorf("parser.sites[%d] (%s): at least one selector is required", i, site.Name)
		}
	}

	if cfg.Pipeline.MaxTitleLen < 0 {
		return fmt.Errorf("pipeline.max_title_len must be >= 0")
	}

	validStorageTypes := map[string]bool{
		"none": true, "json": true, "jsonl": true, "yaml": true, "csv": true, "mongodb": true,
	}
	for _, typ := range StorageTypes(cfg.Storage.Type) {
		if !validStorageTypes[typ] {
			return fmt.Errorf("storage.type %q is not supported (valid: none, json, jsonl, yaml, csv, mongodb)", typ)
		}
		if typ == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
	}
	if cfg.API.DailyLimit < 0 {
		return fmt.Errorf("api.daily_limit must be >= 0, got %d", cfg.API.DailyLimit)
	}

	if cfg.Monitor.WebhookURL != "" {
		if err := ValidateURL(cfg.Monitor.WebhookURL); err != nil {
			return fmt.Errorf("monitor.webhook_url: %w", err)
		}
		if cfg.Monitor.Timeout <= 0 {
			return fmt.Errorf("monitor.timeout must be > 0")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// StorageTypes splits a comma separated storage.type value.
func StorageTypes(raw string) []string {
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// ValidateURL checks that a URL is absolute http(s) with a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
