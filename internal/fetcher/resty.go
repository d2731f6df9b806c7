package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// RestyFetcher implements Fetcher on top of go-resty. Resty's own retry
// loop is disabled; Retrier owns the attempt schedule.
type RestyFetcher struct {
	client *resty.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// NewRestyFetcher creates a resty-backed fetcher sharing the HTTP fetcher's transport settings.
func NewRestyFetcher(cfg *config.FetcherConfig, logger *slog.Logger) (*RestyFetcher, error) {
	transport, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	client := resty.NewWithClient(&http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy(cfg),
	})
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(0)
	client.SetDoNotParseResponse(true)
	for key, values := range headerProfile(cfg) {
		client.SetHeader(key, values[0])
	}

	return &RestyFetcher{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "resty_fetcher"),
	}, nil
}

// Fetch executes one GET through resty.
func (f *RestyFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: isRetryableError(err)}
	}
	raw := resp.RawBody()
	defer raw.Close()

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, statusError(rawURL, status, raw)
	}

	body, err := readBody(resp.Header().Get("Content-Encoding"), raw, f.cfg.MaxBodySize)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: status, Err: err, Retryable: true}
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	f.logger.Debug("fetch complete", "url", rawURL, "status", status, "size", len(body), "duration", duration)

	return &types.Response{
		StatusCode:    status,
		Headers:       resp.Header(),
		Body:          body,
		URL:           rawURL,
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}, nil
}

// Close releases idle connections.
func (f *RestyFetcher) Close() error {
	f.client.GetClient().CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *RestyFetcher) Type() string {
	return "resty"
}
