package parser

import (
	"strings"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// fillerWords never identify a site on their own.
var fillerWords = map[string]bool{"the": true, "news": true, "com": true, "www": true}

// Lookup maps a typed or spoken site name to a Target. It tries, in order:
// an exact name or alias, a name contained in the query, any distinctive word
// of a name, and finally treats the query itself as a URL or bare domain.
func (r *Registry) Lookup(query string) (types.Target, error) {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)
	norm := normalizeName(query)

	for _, s := range r.sites {
		if s.matchesName(norm) {
			return types.Target{Name: s.Name, URL: s.URL}, nil
		}
	}

	if norm != "" {
		for _, s := range r.sites {
			for _, name := range append([]string{s.Name}, s.Aliases...) {
				if n := normalizeName(name); len(n) > 3 && strings.Contains(norm, n) {
					return types.Target{Name: s.Name, URL: s.URL}, nil
				}
			}
		}
	}

	words := strings.Fields(lower)
	for _, s := range r.sites {
		for _, w := range strings.Fields(strings.ToLower(s.Name)) {
			if fillerWords[w] || len(w) < 4 {
				continue
			}
			for _, qw := range words {
				if qw == w {
					return types.Target{Name: s.Name, URL: s.URL}, nil
				}
			}
		}
	}

	raw := query
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + strings.ReplaceAll(query, " ", "")
	}
	t, err := types.NewTarget("", raw)
	if err != nil {
		return types.Target{}, err
	}
	if site := r.Resolve(t); site != nil {
		t.Name = site.Name
	}
	return t, nil
}
