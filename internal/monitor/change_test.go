package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var site = types.Target{Name: "Example", URL: "https://example.com/news"}

func TestDetect(t *testing.T) {
	cd, err := NewChangeDetector(t.TempDir(), testLogger)
	require.NoError(t, err)

	change, err := cd.Detect(site, "aaa")
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, ChangeAdded, change.Type)
	assert.Equal(t, "aaa", cd.Last(site.URL))

	change, err = cd.Detect(site, "aaa")
	require.NoError(t, err)
	assert.Nil(t, change)

	change, err = cd.Detect(site, "bbb")
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, ChangeModified, change.Type)
	assert.Equal(t, "aaa", change.OldSignature)
	assert.Equal(t, "bbb", change.NewSignature)
	assert.Equal(t, "bbb", cd.Last(site.URL))
}

func TestSnapshotsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	first, err := NewChangeDetector(dir, testLogger)
	require.NoError(t, err)
	_, err = first.Detect(site, "aaa")
	require.NoError(t, err)

	second, err := NewChangeDetector(dir, testLogger)
	require.NoError(t, err)
	change, err := second.Detect(site, "aaa")
	require.NoError(t, err)
	assert.Nil(t, change)
}

type recordingChannel struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recordingChannel) Type() string { return "recording" }

func (r *recordingChannel) Send(_ context.Context, changes []Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func TestSaveMarkupNotifiesOnlyOnModification(t *testing.T) {
	cd, err := NewChangeDetector(t.TempDir(), testLogger)
	require.NoError(t, err)
	ch := &recordingChannel{}
	n := NewNotifier(testLogger)
	n.AddChannel(ch)
	cd.SetNotifier(n)

	before := `<html><body><h2 class="title"><a href="/a">A</a></h2></body></html>`
	sameShape := `<html><body><h2 class="title"><a href="/b">B</a></h2></body></html>`
	redesign := `<html><body><div data-card="1"><a href="/a">A</a></div></body></html>`

	require.NoError(t, cd.SaveMarkup(context.Background(), site, before))
	require.NoError(t, cd.SaveMarkup(context.Background(), site, sameShape))
	assert.Empty(t, ch.changes)

	require.NoError(t, cd.SaveMarkup(context.Background(), site, redesign))
	require.Len(t, ch.changes, 1)
	assert.Equal(t, ChangeModified, ch.changes[0].Type)
	assert.Equal(t, parser.Signature(before), ch.changes[0].OldSignature)
	assert.Equal(t, parser.Signature(redesign), ch.changes[0].NewSignature)
}

func TestWebhookChannel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhookChannel(srv.URL, time.Second, testLogger)
	err := wh.Send(context.Background(), []Change{{Site: "Example", Type: ChangeModified, NewSignature: "bbb"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, got["count"])

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	err = NewWebhookChannel(failing.URL, time.Second, testLogger).Send(context.Background(), []Change{{Site: "x"}})
	assert.Error(t, err)
}

func TestSaveMarkupStopsNotifyingOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	cd, err := New(&config.MonitorConfig{
		SnapshotDir: t.TempDir(),
		WebhookURL:  srv.URL,
		Timeout:     10 * time.Second,
	}, testLogger)
	require.NoError(t, err)

	require.NoError(t, cd.SaveMarkup(context.Background(), site, `<html><body><h2><a href="/a">A</a></h2></body></html>`))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	require.NoError(t, cd.SaveMarkup(ctx, site, `<html><body><section><p>moved</p></section></body></html>`))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewFromConfig(t *testing.T) {
	cd, err := New(&config.MonitorConfig{}, testLogger)
	require.NoError(t, err)
	assert.Nil(t, cd)

	cd, err = New(&config.MonitorConfig{
		SnapshotDir: t.TempDir(),
		WebhookURL:  "http://127.0.0.1:1/hook",
		Timeout:     time.Second,
	}, testLogger)
	require.NoError(t, err)
	require.NotNil(t, cd)
	assert.NotNil(t, cd.notifier)
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan struct{})
	go func() {
		NewScheduler(10*time.Millisecond, testLogger).Run(ctx, func(context.Context) {
			if runs.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}
