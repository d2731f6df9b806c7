// Package monitor detects when a site's page structure changes between runs.
//
// Site strategies are bound to CSS and XPath selectors; when a site
// redesigns its front page those selectors silently stop matching. The
// ChangeDetector keeps the last structure signature seen for each site and
// reports a Change when it moves, optionally posting it to a webhook.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
)

// Change is a detected structure change for one site.
type Change struct {
	Site         string     `json:"site"`
	URL          string     `json:"url"`
	Type         ChangeType `json:"type"`
	OldSignature string     `json:"old_signature,omitempty"`
	NewSignature string     `json:"new_signature"`
	Timestamp    time.Time  `json:"timestamp"`
}

type snapshot struct {
	Site      string    `json:"site"`
	URL       string    `json:"url"`
	Signature string    `json:"signature"`
	SeenAt    time.Time `json:"seen_at"`
}

// ChangeDetector compares page signatures against the last stored snapshot.
type ChangeDetector struct {
	snapshotDir string
	notifier    *Notifier
	logger      *slog.Logger
	now         func() time.Time
	mu          sync.Mutex
}

// NewChangeDetector creates a detector that keeps snapshots in snapshotDir.
func NewChangeDetector(snapshotDir string, logger *slog.Logger) (*ChangeDetector, error) {
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &ChangeDetector{
		snapshotDir: snapshotDir,
		logger:      logger.With("component", "change_detector"),
		now:         time.Now,
	}, nil
}

// New builds a detector from config, or returns nil when monitoring is off.
func New(cfg *config.MonitorConfig, logger *slog.Logger) (*ChangeDetector, error) {
	if cfg.SnapshotDir == "" {
		return nil, nil
	}
	cd, err := NewChangeDetector(cfg.SnapshotDir, logger)
	if err != nil {
		return nil, err
	}
	if cfg.WebhookURL != "" {
		n := NewNotifier(logger)
		n.AddChannel(NewWebhookChannel(cfg.WebhookURL, cfg.Timeout, logger))
		cd.SetNotifier(n)
	}
	return cd, nil
}

// SetNotifier sets where detected changes are sent.
func (cd *ChangeDetector) SetNotifier(n *Notifier) {
	cd.notifier = n
}

// Detect records signature for t and returns the change against the previous
// snapshot, or nil when the structure is unchanged.
func (cd *ChangeDetector) Detect(t types.Target, signature string) (*Change, error) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	now := cd.now()
	old, err := cd.loadSnapshot(t.URL)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var change *Change
	switch {
	case old == nil:
		change = &Change{Site: t.Name, URL: t.URL, Type: ChangeAdded, NewSignature: signature, Timestamp: now}
	case old.Signature != signature:
		change = &Change{
			Site:         t.Name,
			URL:          t.URL,
			Type:         ChangeModified,
			OldSignature: old.Signature,
			NewSignature: signature,
			Timestamp:    now,
		}
	}

	if err := cd.saveSnapshot(snapshot{Site: t.Name, URL: t.URL, Signature: signature, SeenAt: now}); err != nil {
		return nil, err
	}
	return change, nil
}

// SaveMarkup fingerprints fetched markup and reports structure changes.
// It lets the detector sit in the engine's markup sink chain. Notification
// stops when ctx is cancelled.
func (cd *ChangeDetector) SaveMarkup(ctx context.Context, t types.Target, markup string) error {
	change, err := cd.Detect(t, parser.Signature(markup))
	if err != nil {
		return err
	}
	if change == nil || change.Type != ChangeModified {
		return nil
	}

	cd.logger.Warn("page structure changed, selectors may need updating",
		"site", change.Site,
		"old", change.OldSignature,
		"new", change.NewSignature,
	)
	if cd.notifier != nil {
		cd.notifier.Notify(ctx, []Change{*change})
	}
	return nil
}

// Last returns the stored signature for url, or "" if none.
func (cd *ChangeDetector) Last(url string) string {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	snap, err := cd.loadSnapshot(url)
	if err != nil || snap == nil {
		return ""
	}
	return snap.Signature
}

func (cd *ChangeDetector) loadSnapshot(url string) (*snapshot, error) {
	data, err := os.ReadFile(cd.snapshotPath(url))
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (cd *ChangeDetector) saveSnapshot(snap snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cd.snapshotPath(snap.URL), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (cd *ChangeDetector) snapshotPath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(cd.snapshotDir, hex.EncodeToString(hash[:])+".json")
}

// NotificationChannel delivers detected changes.
type NotificationChannel interface {
	Send(ctx context.Context, changes []Change) error
	Type() string
}

// Notifier fans changes out to its channels.
type Notifier struct {
	channels []NotificationChannel
	logger   *slog.Logger
}

// NewNotifier creates a notifier with no channels.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With("component", "notifier"),
	}
}

// AddChannel registers a notification channel.
func (n *Notifier) AddChannel(ch NotificationChannel) {
	n.channels = append(n.channels, ch)
}

// Notify sends changes to all registered channels until ctx is done.
// Failures are logged.
func (n *Notifier) Notify(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}
	for _, ch := range n.channels {
		if ctx.Err() != nil {
			n.logger.Warn("notification cancelled", "channel", ch.Type(), "error", ctx.Err())
			return
		}
		if err := ch.Send(ctx, changes); err != nil {
			n.logger.Error("notification failed", "channel", ch.Type(), "error", err)
		}
	}
}

// WebhookChannel POSTs changes as JSON.
type WebhookChannel struct {
	url    string
	client *resty.Client
	logger *slog.Logger
}

// NewWebhookChannel creates a webhook channel posting to url.
func NewWebhookChannel(url string, timeout time.Duration, logger *slog.Logger) *WebhookChannel {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &WebhookChannel{
		url:    url,
		client: client,
		logger: logger.With("component", "webhook"),
	}
}

func (w *WebhookChannel) Type() string { return "webhook" }

func (w *WebhookChannel) Send(ctx context.Context, changes []Change) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"changes":   changes,
			"count":     len(changes),
			"timestamp": time.Now().UTC(),
		}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %d", resp.StatusCode())
	}
	w.logger.Debug("webhook delivered", "changes", len(changes), "status", resp.StatusCode())
	return nil
}
