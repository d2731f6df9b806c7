package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Fetcher performs a single GET attempt. Retrying is layered on top by Retrier.
type Fetcher interface {
	// Fetch retrieves the given URL. Non-2xx responses are returned as *types.FetchError.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases resources.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the single-attempt fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "", "http":
		return NewHTTPFetcher(&cfg.Fetcher, logger)
	case "resty":
		return NewRestyFetcher(&cfg.Fetcher, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", cfg.Fetcher.Type)
	}
}

// headerProfile is the fixed browser-like header set sent with every attempt.
func headerProfile(cfg *config.FetcherConfig) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", cfg.UserAgent)
	h.Set("Accept", cfg.Accept)
	if cfg.AcceptLanguage != "" {
		h.Set("Accept-Language", cfg.AcceptLanguage)
	}
	h.Set("Accept-Encoding", "gzip, deflate, br")
	return h
}
