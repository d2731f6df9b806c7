package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// GenericName is the strategy name reported when the generic fallback produced the records.
const GenericName = "generic"

const headingAnchors = "h1 a, h2 a, h3 a"

// GenericStrategy collects anchors inside h1-h3 headings. Links on the base
// host (or a subdomain of it) are preferred; if none exist, every heading
// link is accepted so aggregator pages still yield something.
type GenericStrategy struct{}

func (GenericStrategy) Name() string { return GenericName }

// Extract implements Strategy. Empty or malformed markup yields no records and no error.
func (GenericStrategy) Extract(markup, baseURL string) ([]types.Headline, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	var all, sameSite []types.Headline
	doc.Find(headingAnchors).Each(func(_ int, a *goquery.Selection) {
		rec, ok := anchorRecord(a, base)
		if !ok {
			return
		}
		all = append(all, rec)
		if sameOrigin(rec.Link, base) {
			sameSite = append(sameSite, rec)
		}
	})

	if len(sameSite) > 0 {
		return sameSite, nil
	}
	return all, nil
}

// sameOrigin reports whether link's host equals base's host or is a subdomain of it.
// A leading "www." on the base host is ignored.
func sameOrigin(link string, base *url.URL) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	root := strings.TrimPrefix(strings.ToLower(base.Hostname()), "www.")
	return host == root || strings.HasSuffix(host, "."+root)
}
