package parser

import (
	"strings"
	"unicode"
)

// SiteKind identifies a site with dedicated extraction strategies.
type SiteKind int

const (
	SiteUnknown SiteKind = iota
	SiteTheHackerNews
	SiteCyberSecurityNews
	SiteFXStreet
	SiteHackerNews
	SiteBleepingComputer
	SiteCustom
)

func (k SiteKind) String() string {
	switch k {
	case SiteTheHackerNews:
		return "thehackernews"
	case SiteCyberSecurityNews:
		return "cybersecuritynews"
	case SiteFXStreet:
		return "fxstreet"
	case SiteHackerNews:
		return "hackernews"
	case SiteBleepingComputer:
		return "bleepingcomputer"
	case SiteCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Site is a known site bound to its ordered strategies.
type Site struct {
	Kind       SiteKind
	Name       string
	URL        string
	Aliases    []string
	Hosts      []string
	Strategies []Strategy
}

// ID is the normalized name used for lookups and the API allow-list.
func (s *Site) ID() string {
	return normalizeName(s.Name)
}

// matchesName reports whether the normalized name equals the site name or an alias.
func (s *Site) matchesName(norm string) bool {
	if norm == "" {
		return false
	}
	if normalizeName(s.Name) == norm {
		return true
	}
	for _, a := range s.Aliases {
		if normalizeName(a) == norm {
			return true
		}
	}
	return false
}

// matchesHost reports whether host contains any of the site's host markers.
func (s *Site) matchesHost(host string) bool {
	if host == "" {
		return false
	}
	for _, h := range s.Hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

// builtinSites returns the sites shipped with the binary, each bound to its strategies.
func builtinSites() []*Site {
	return []*Site{
		{
			Kind:    SiteTheHackerNews,
			Name:    "The Hacker News",
			URL:     "https://thehackernews.com/",
			Aliases: []string{"thehackernews", "thn"},
			Hosts:   []string{"thehackernews.com"},
			Strategies: []Strategy{
				MustSelectorStrategy("thehackernews", []string{
					"a.story-link",
					".body-post h2 a",
					"article h2 a, h2 a",
				}, ""),
			},
		},
		{
			Kind:    SiteCyberSecurityNews,
			Name:    "CyberSecurityNews",
			URL:     "https://cybersecuritynews.com/",
			Aliases: []string{"cybersecurity news", "csn"},
			Hosts:   []string{"cybersecuritynews.com"},
			Strategies: []Strategy{
				MustSelectorStrategy("cybersecuritynews", []string{
					"h2.entry-title a",
					"h3.entry-title a",
					"article h2 a",
					"article h3 a",
				}, ""),
			},
		},
		{
			Kind:    SiteFXStreet,
			Name:    "FXStreet",
			URL:     "https://www.fxstreet.com/news",
			Aliases: []string{"fxstreet news", "fx street"},
			Hosts:   []string{"fxstreet.com"},
			Strategies: []Strategy{
				MustSelectorStrategy("fxstreet", []string{
					"a.story-link",
					"article h2 a, h2 a",
				}, DefaultContentSelector),
			},
		},
		{
			Kind:    SiteHackerNews,
			Name:    "Hacker News",
			URL:     "https://news.ycombinator.com/",
			Aliases: []string{"hackernews", "hn", "ycombinator"},
			Hosts:   []string{"news.ycombinator.com"},
			Strategies: []Strategy{
				MustXPathStrategy("hackernews_xpath", []string{
					"//tr[contains(concat(' ', normalize-space(@class), ' '), ' athing ')]//span[contains(@class, 'titleline')]/a",
				}),
				MustSelectorStrategy("hackernews_css", []string{".athing .titleline a"}, ""),
			},
		},
		{
			Kind:    SiteBleepingComputer,
			Name:    "BleepingComputer",
			URL:     "https://www.bleepingcomputer.com/",
			Aliases: []string{"bleeping computer"},
			Hosts:   []string{"bleepingcomputer.com"},
			Strategies: []Strategy{
				MustSelectorStrategy("bleepingcomputer", []string{
					".bc_latest_news_text h4 a",
					".bc_latest_news a",
				}, ""),
			},
		},
	}
}

// normalizeName lower-cases and drops everything but letters and digits,
// so "The Hacker News" and "thehackernews" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
