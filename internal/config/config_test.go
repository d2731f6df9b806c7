package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 10, cfg.Engine.Concurrency)
	assert.Equal(t, 30, cfg.Engine.MaxItems)
	assert.Equal(t, 15*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 2, cfg.Fetcher.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Fetcher.BackoffBase)
	assert.Equal(t, 100, cfg.API.DailyLimit)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headlinegoat.yaml")
	yaml := `
engine:
  concurrency: 4
fetcher:
  timeout: 5s
  max_retries: 1
parser:
  sites:
    - name: Example
      url: https://example.com/
      selectors: ["h2.title a"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 1, cfg.Fetcher.MaxRetries)
	assert.Equal(t, 30, cfg.Engine.MaxItems, "unset keys keep defaults")
	require.Len(t, cfg.Parser.Sites, 1)
	assert.Equal(t, []string{"h2.title a"}, cfg.Parser.Sites[0].Selectors)
	require.NoError(t, Validate(cfg))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HEADLINEGOAT_ENGINE_CONCURRENCY", "3")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.Concurrency)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero concurrency", func(c *Config) { c.Engine.Concurrency = 0 }},
		{"zero max items", func(c *Config) { c.Engine.MaxItems = 0 }},
		{"max items above cap", func(c *Config) { c.Engine.MaxItems = MaxItemsLimit + 1 }},
		{"bad fetcher", func(c *Config) { c.Fetcher.Type = "browser" }},
		{"negative retries", func(c *Config) { c.Fetcher.MaxRetries = -1 }},
		{"bad storage", func(c *Config) { c.Storage.Type = "json,xml" }},
		{"mongo without uri", func(c *Config) { c.Storage.Type = "mongodb" }},
		{"site without selectors", func(c *Config) {
			c.Parser.Sites = []SiteConfig{{Name: "x", URL: "https://x.example"}}
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestLoadRejectsMaxItemsOverCapFromEnv(t *testing.T) {
	t.Setenv("HEADLINEGOAT_ENGINE_MAX_ITEMS", "100")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Engine.MaxItems)
	assert.ErrorContains(t, Validate(cfg), "engine.max_items must be <= 30")
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://thehackernews.com/"))
	assert.Error(t, ValidateURL("thehackernews.com"))
	assert.Error(t, ValidateURL("mailto:a@b.c"))
}

func TestStorageTypes(t *testing.T) {
	assert.Equal(t, []string{"json", "mongodb"}, StorageTypes(" JSON, mongodb ,"))
	assert.Nil(t, StorageTypes(""))
}
