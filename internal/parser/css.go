package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// DefaultContentSelector finds a summary snippet next to a headline.
const DefaultContentSelector = "p, .excerpt, .summary"

// SelectorStrategy tries CSS patterns in order; the first pattern that yields
// at least one record wins and later patterns are not evaluated.
type SelectorStrategy struct {
	name     string
	patterns []string
	content  string
}

// NewSelectorStrategy validates every pattern up front so a typo fails at construction.
func NewSelectorStrategy(name string, patterns []string, content string) (*SelectorStrategy, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("strategy %q: no selector patterns", name)
	}
	for _, p := range append([]string{content}, patterns...) {
		if p == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(p); err != nil {
			return nil, fmt.Errorf("strategy %q: invalid selector %q: %w", name, p, err)
		}
	}
	return &SelectorStrategy{name: name, patterns: patterns, content: content}, nil
}

// MustSelectorStrategy is NewSelectorStrategy for built-in, known-good selectors.
func MustSelectorStrategy(name string, patterns []string, content string) *SelectorStrategy {
	s, err := NewSelectorStrategy(name, patterns, content)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SelectorStrategy) Name() string { return s.name }

// Patterns returns the ordered selector list.
func (s *SelectorStrategy) Patterns() []string { return s.patterns }

// Extract implements Strategy.
func (s *SelectorStrategy) Extract(markup, baseURL string) ([]types.Headline, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	for _, pattern := range s.patterns {
		var records []types.Headline
		doc.Find(pattern).Each(func(_ int, sel *goquery.Selection) {
			if rec, ok := s.record(sel, base); ok {
				records = append(records, rec)
			}
		})
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

func (s *SelectorStrategy) record(sel *goquery.Selection, base *url.URL) (types.Headline, bool) {
	anchor := anchorOf(sel)
	if anchor == nil {
		return types.Headline{}, false
	}
	rec, ok := anchorRecord(anchor, base)
	if !ok {
		return rec, false
	}
	if s.content != "" {
		rec.Content = snippet(anchor, s.content)
	}
	return rec, true
}

// anchorOf returns sel if it is an anchor, else its first descendant anchor with an href.
func anchorOf(sel *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(sel) == "a" {
		return sel
	}
	inner := sel.Find("a[href]").First()
	if inner.Length() == 0 {
		return nil
	}
	return inner
}

// anchorRecord builds a record from an anchor; both title text and href are required.
func anchorRecord(a *goquery.Selection, base *url.URL) (types.Headline, bool) {
	title := cleanText(a.Text())
	if title == "" {
		return types.Headline{}, false
	}
	href, exists := a.Attr("href")
	if !exists {
		return types.Headline{}, false
	}
	link, ok := resolveLink(base, href)
	if !ok {
		return types.Headline{}, false
	}
	return types.Headline{Title: title, Link: link}, true
}

// snippet looks for a content element in the anchor's parent, then its enclosing article.
func snippet(a *goquery.Selection, selector string) string {
	if text := cleanText(a.Parent().Find(selector).First().Text()); text != "" {
		return text
	}
	return cleanText(a.Closest("article").Find(selector).First().Text())
}
