package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// TrimMiddleware collapses whitespace in the title and content.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	h.Title = strings.Join(strings.Fields(h.Title), " ")
	h.Content = strings.Join(strings.Fields(h.Content), " ")
	h.Link = strings.TrimSpace(h.Link)
	return h, nil
}

// RequiredFieldsMiddleware drops headlines missing a title or a link.
type RequiredFieldsMiddleware struct{}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	if !h.Valid() {
		return nil, nil
	}
	return h, nil
}

// HTMLSanitizeMiddleware strips tags and decodes entities that survived text
// extraction, e.g. escaped markup inside a title attribute or summary.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	h.Title = m.clean(h.Title)
	h.Content = m.clean(h.Content)
	return h, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	s = html.UnescapeString(s)
	s = m.stripRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// TruncateMiddleware shortens titles longer than MaxLen runes.
type TruncateMiddleware struct {
	MaxLen int
}

func (m *TruncateMiddleware) Name() string { return "truncate" }

func (m *TruncateMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	if m.MaxLen <= 0 || utf8.RuneCountInString(h.Title) <= m.MaxLen {
		return h, nil
	}
	runes := []rune(h.Title)
	h.Title = strings.TrimSpace(string(runes[:m.MaxLen])) + "..."
	return h, nil
}

var keywordStrip = regexp.MustCompile(`[^a-zA-Z0-9\s\-]`)

// SanitizeKeyword removes everything but letters, digits, whitespace and
// hyphens, then trims. An empty result is an error.
func SanitizeKeyword(raw string) (string, error) {
	kw := strings.TrimSpace(keywordStrip.ReplaceAllString(raw, ""))
	if kw == "" {
		return "", fmt.Errorf("%w: %q", types.ErrInvalidKeyword, raw)
	}
	return kw, nil
}

// KeywordFilterMiddleware keeps headlines whose title contains the keyword,
// ignoring case.
type KeywordFilterMiddleware struct {
	keyword string
	lower   string
}

// NewKeywordFilterMiddleware sanitizes raw and builds the filter.
func NewKeywordFilterMiddleware(raw string) (*KeywordFilterMiddleware, error) {
	kw, err := SanitizeKeyword(raw)
	if err != nil {
		return nil, err
	}
	return &KeywordFilterMiddleware{keyword: kw, lower: strings.ToLower(kw)}, nil
}

func (m *KeywordFilterMiddleware) Name() string { return "keyword_filter" }

// Keyword returns the sanitized keyword.
func (m *KeywordFilterMiddleware) Keyword() string { return m.keyword }

func (m *KeywordFilterMiddleware) Process(h *types.Headline) (*types.Headline, error) {
	if !strings.Contains(strings.ToLower(h.Title), m.lower) {
		return nil, nil
	}
	return h, nil
}
