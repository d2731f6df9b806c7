package engine

import (
	"net/url"
	"sort"
	"strings"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// DefaultMaxItems caps the records kept per site.
const DefaultMaxItems = config.MaxItemsLimit

// Dedupe keeps the first record for each canonical link, preserving order,
// and truncates to limit. A limit outside 1..DefaultMaxItems means DefaultMaxItems.
// Dedupe(Dedupe(x, n), n) == Dedupe(x, n).
func Dedupe(records []types.Headline, limit int) []types.Headline {
	if limit <= 0 || limit > DefaultMaxItems {
		limit = DefaultMaxItems
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]types.Headline, 0, min(len(records), limit))
	for _, r := range records {
		if len(out) == limit {
			break
		}
		key := CanonicalizeURL(r.Link)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CanonicalizeURL normalizes a URL for deduplication:
// - lowercases scheme and host
// - removes fragment
// - sorts query parameters
// - removes trailing slash (except root)
// - removes default ports (80 for http, 443 for https)
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}

	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sorted []string
		for _, k := range keys {
			vals := params[k]
			sort.Strings(vals)
			for _, v := range vals {
				sorted = append(sorted, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		u.RawQuery = strings.Join(sorted, "&")
	}

	if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}

	return u.String()
}
