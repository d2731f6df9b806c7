// Package parser turns page markup into headline records.
//
// A Strategy is a pure function of (markup, baseURL). Site kinds bind an
// ordered list of strategies; the Registry runs them with a generic
// heading-link fallback.
package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Strategy extracts headline records from markup. Implementations must not
// perform I/O and must skip malformed elements instead of failing.
type Strategy interface {
	Name() string
	Extract(markup, baseURL string) ([]types.Headline, error)
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(markup, baseURL string) ([]types.Headline, error)
}

func (s StrategyFunc) Name() string { return s.Label }

func (s StrategyFunc) Extract(markup, baseURL string) ([]types.Headline, error) {
	return s.Fn(markup, baseURL)
}

// safeExtract runs a strategy, converting a panic into an ExtractError.
func safeExtract(site string, s Strategy, markup, baseURL string) (records []types.Headline, err error) {
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = &types.ExtractError{Site: site, Strategy: s.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	records, err = s.Extract(markup, baseURL)
	if err != nil {
		return nil, &types.ExtractError{Site: site, Strategy: s.Name(), Err: err}
	}
	return records, nil
}

// parseBase parses the base URL used to resolve relative links.
func parseBase(baseURL string) (*url.URL, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base %q is not absolute", types.ErrInvalidURL, baseURL)
	}
	return base, nil
}

// resolveLink resolves href against base, skipping fragments and non-http schemes.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// cleanText collapses runs of whitespace and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
