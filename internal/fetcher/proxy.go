package fetcher

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync/atomic"
)

// ProxyRotator hands out configured proxies per request.
type ProxyRotator struct {
	proxies  []*url.URL
	rotation string
	index    atomic.Int64
}

// NewProxyRotator parses the proxy URLs. rotation is "round_robin" (default) or "random".
func NewProxyRotator(rawURLs []string, rotation string) (*ProxyRotator, error) {
	pr := &ProxyRotator{rotation: rotation}
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("invalid proxy URL %q: unsupported scheme %q", raw, u.Scheme)
		}
		pr.proxies = append(pr.proxies, u)
	}
	return pr, nil
}

// Next returns the proxy for the next request, or nil for a direct connection.
func (pr *ProxyRotator) Next() *url.URL {
	if len(pr.proxies) == 0 {
		return nil
	}
	if pr.rotation == "random" {
		return pr.proxies[rand.Intn(len(pr.proxies))]
	}
	idx := (pr.index.Add(1) - 1) % int64(len(pr.proxies))
	return pr.proxies[idx]
}

// ProxyFunc adapts the rotator to http.Transport.Proxy.
func (pr *ProxyRotator) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return pr.Next(), nil
	}
}

// Count returns the number of proxies.
func (pr *ProxyRotator) Count() int {
	return len(pr.proxies)
}
