package headlinegoat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><body>
			<div class="lead"><a href="/one">Patch Tuesday fixes 60 bugs</a></div>
			<div class="lead"><a href="/two">New ransomware strain spotted</a></div>
			<div class="lead"><a href="/one">Patch Tuesday fixes 60 bugs</a></div>
		</body></html>`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientScrape(t *testing.T) {
	srv := newsServer(t)
	out := filepath.Join(t.TempDir(), "runs.jsonl")

	client, err := New(
		WithSite("Local Wire", srv.URL, ".lead a"),
		WithRetries(0),
		WithTimeout(2*time.Second),
		WithOutput("jsonl", out),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.Contains(t, client.Sites(), "Local Wire")

	report := client.Scrape(context.Background(), "local wire")
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, "Local Wire", res.Site)
	assert.True(t, res.OK)
	require.Len(t, res.Items, 2)
	assert.Equal(t, srv.URL+"/one", res.Items[0].Link)
	assert.Equal(t, "Patch Tuesday fixes 60 bugs", res.Items[0].Title)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), report.RunID)

	assert.EqualValues(t, 1, client.Stats()["runs"])
}

func TestClientFilterAndURLs(t *testing.T) {
	srv := newsServer(t)

	snapshots := t.TempDir()
	client, err := New(WithSite("Local Wire", srv.URL, ".lead a"), WithRetries(0), WithStructureMonitor(snapshots))
	require.NoError(t, err)
	defer client.Close()

	report, err := client.Filter(context.Background(), "RANSOMWARE", "Local Wire")
	require.NoError(t, err)
	require.Len(t, report.Results[0].Items, 1)
	assert.Equal(t, "New ransomware strain spotted", report.Results[0].Items[0].Title)

	_, err = client.Filter(context.Background(), "!!!", "Local Wire")
	assert.Error(t, err)

	report, err = client.ScrapeURLs(context.Background(), srv.URL+"/front")
	require.NoError(t, err)
	assert.Equal(t, "Local Wire", report.Results[0].Site)
	assert.Len(t, report.Results[0].Items, 2)

	_, err = client.ScrapeURLs(context.Background(), "not a url")
	assert.Error(t, err)

	entries, err := os.ReadDir(snapshots)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one snapshot per scraped page URL")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(WithConcurrency(0))
	assert.Error(t, err)

	_, err = New(WithOutput("parquet", "x"))
	assert.Error(t, err)

	_, err = New(WithMaxItems(100))
	assert.ErrorContains(t, err, "engine.max_items")
}
