package parser

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// XPathStrategy is the XPath counterpart of SelectorStrategy: ordered
// expressions, first expression yielding records wins.
type XPathStrategy struct {
	name  string
	exprs []*xpath.Expr
	raw   []string
}

// NewXPathStrategy compiles every expression up front.
func NewXPathStrategy(name string, exprs []string) (*XPathStrategy, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("strategy %q: no xpath expressions", name)
	}
	compiled := make([]*xpath.Expr, 0, len(exprs))
	for _, e := range exprs {
		c, err := xpath.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("strategy %q: invalid xpath %q: %w", name, e, err)
		}
		compiled = append(compiled, c)
	}
	return &XPathStrategy{name: name, exprs: compiled, raw: exprs}, nil
}

// MustXPathStrategy is NewXPathStrategy for built-in expressions.
func MustXPathStrategy(name string, exprs []string) *XPathStrategy {
	s, err := NewXPathStrategy(name, exprs)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *XPathStrategy) Name() string { return s.name }

// Patterns returns the ordered expression list.
func (s *XPathStrategy) Patterns() []string { return s.raw }

// Extract implements Strategy.
func (s *XPathStrategy) Extract(markup, baseURL string) ([]types.Headline, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	for _, expr := range s.exprs {
		var records []types.Headline
		for _, node := range htmlquery.QuerySelectorAll(doc, expr) {
			anchor := node
			if node.Type != html.ElementNode || node.Data != "a" {
				anchor = htmlquery.FindOne(node, ".//a[@href]")
				if anchor == nil {
					continue
				}
			}
			title := cleanText(htmlquery.InnerText(anchor))
			if title == "" || !hasAttr(anchor, "href") {
				continue
			}
			link, ok := resolveLink(base, htmlquery.SelectAttr(anchor, "href"))
			if !ok {
				continue
			}
			records = append(records, types.Headline{Title: title, Link: link})
		}
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
