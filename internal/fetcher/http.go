package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client  *http.Client
	cfg     *config.FetcherConfig
	headers http.Header
	logger  *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.FetcherConfig, logger *slog.Logger) (*HTTPFetcher, error) {
	transport, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Transport:     transport,
		Timeout:       cfg.Timeout,
		CheckRedirect: redirectPolicy(cfg),
	}

	return &HTTPFetcher{
		client:  client,
		cfg:     cfg,
		headers: headerProfile(cfg),
		logger:  logger.With("component", "http_fetcher"),
	}, nil
}

// Fetch executes one GET and returns the decoded response.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: false}
	}
	httpReq.Header = f.headers.Clone()

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: isRetryableError(err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, statusError(rawURL, httpResp.StatusCode, httpResp.Body)
	}

	body, err := readBody(httpResp.Header.Get("Content-Encoding"), httpResp.Body, f.cfg.MaxBodySize)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: err, Retryable: true}
	}

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return &types.Response{
		StatusCode:    httpResp.StatusCode,
		Headers:       httpResp.Header,
		Body:          body,
		URL:           rawURL,
		FinalURL:      httpResp.Request.URL.String(),
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

func newTransport(cfg *config.FetcherConfig, logger *slog.Logger) (*http.Transport, error) {
	proxy := http.ProxyFromEnvironment
	if len(cfg.Proxies) > 0 {
		pr, err := NewProxyRotator(cfg.Proxies, cfg.ProxyRotation)
		if err != nil {
			return nil, err
		}
		proxy = pr.ProxyFunc()
		logger.Info("proxy rotation enabled", "count", pr.Count(), "rotation", cfg.ProxyRotation)
	}
	return &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // decoded in readBody, including brotli
	}, nil
}

func redirectPolicy(cfg *config.FetcherConfig) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !cfg.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.MaxRedirects)
		}
		return nil
	}
}

// statusError turns a non-2xx response into a retryable FetchError.
func statusError(rawURL string, status int, body io.Reader) *types.FetchError {
	snippet, _ := io.ReadAll(io.LimitReader(body, 512))
	return &types.FetchError{
		URL:        rawURL,
		StatusCode: status,
		Err:        fmt.Errorf("HTTP %d: %s", status, strings.TrimSpace(string(snippet))),
		Retryable:  true,
	}
}

// readBody decodes the body according to Content-Encoding, capped at limit bytes.
func readBody(encoding string, body io.Reader, limit int64) ([]byte, error) {
	reader, err := decompressReader(encoding, body)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		reader = io.LimitReader(reader, limit)
	}
	return io.ReadAll(reader)
}

// decompressReader wraps a reader with the decompressor for gzip, deflate or br.
func decompressReader(encoding string, reader io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError reports whether a transport error warrants another attempt.
// Timeouts count as retryable; only an explicit cancellation does not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
