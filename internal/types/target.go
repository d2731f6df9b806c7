package types

import (
	"fmt"
	"net/url"
	"strings"
)

// Target identifies one site to scrape in a run.
type Target struct {
	Name string `json:"site"`
	URL  string `json:"url"`
}

// NewTarget builds a Target, checking that the URL is absolute http(s).
func NewTarget(name, rawURL string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if name == "" {
		name = u.Hostname()
	}
	return Target{Name: name, URL: u.String()}, nil
}

// Host returns the lower-cased hostname of the target URL, or "" if it does not parse.
func (t Target) Host() string {
	u, err := url.Parse(t.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func (t Target) String() string {
	return t.Name + " <" + t.URL + ">"
}
