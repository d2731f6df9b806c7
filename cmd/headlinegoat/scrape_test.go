package main

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testRegistry(t *testing.T) *parser.Registry {
	t.Helper()
	r, err := parser.NewRegistry(&config.DefaultConfig().Parser, testLogger)
	require.NoError(t, err)
	return r
}

func TestScrapeTargets(t *testing.T) {
	r := testRegistry(t)

	targets, err := scrapeTargets(r, "The Hacker News",
		[]string{"hn", "bleeping computer"},
		[]string{"https://thehackernews.com/"})
	require.NoError(t, err)
	require.Len(t, targets, 3)
	assert.Equal(t, "Hacker News", targets[0].Name)
	assert.Equal(t, "BleepingComputer", targets[1].Name)
	assert.Equal(t, "The Hacker News", targets[2].Name)
}

func TestScrapeTargetsDefaultSite(t *testing.T) {
	targets, err := scrapeTargets(testRegistry(t), "The Hacker News", nil, nil)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "https://thehackernews.com/", targets[0].URL)
}

func TestScrapeTargetsRejectsBadURL(t *testing.T) {
	_, err := scrapeTargets(testRegistry(t), "The Hacker News", nil, []string{"ftp://x"})
	assert.ErrorIs(t, err, types.ErrInvalidURL)
}

func sampleReport() *types.Report {
	ok := types.NewSiteResult(types.Target{Name: "A", URL: "https://a.example/"},
		[]types.Headline{{Title: "Go 2 ships", Link: "https://a.example/go"}}, "")
	failed := types.FailedSiteResult(types.Target{Name: "B", URL: "https://b.example/"}, types.TagFetchFailed)
	return types.NewReport([]types.SiteResult{ok, failed})
}

func TestWriteReportFormats(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "json"))
	assert.Contains(t, buf.String(), `"title": "Go 2 ships"`)
	assert.Contains(t, buf.String(), `"error": "fetch_failed"`)

	buf.Reset()
	require.NoError(t, writeReport(&buf, report, "yaml"))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc["count"])
	assert.Equal(t, true, doc["ok"])

	buf.Reset()
	require.NoError(t, writeReport(&buf, report, "text"))
	assert.Contains(t, buf.String(), "== A (https://a.example/) [ok]")
	assert.Contains(t, buf.String(), "== B (https://b.example/) [fetch_failed]")
	assert.Contains(t, buf.String(), "  - Go 2 ships")
}
