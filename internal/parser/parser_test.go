package parser

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const theHackerNewsHTML = `<!DOCTYPE html>
<html><body>
  <div class="body-post">
    <a class="story-link" href="/2025/01/first.html"><h2 class="home-title">First   story</h2></a>
  </div>
  <div class="body-post">
    <a class="story-link" href="https://thehackernews.com/2025/01/second.html">Second story</a>
  </div>
  <div class="body-post"><a class="story-link">No href here</a></div>
  <div class="body-post"><a class="story-link" href="/empty"> </a></div>
  <h2><a href="/from-heading">Heading link</a></h2>
</body></html>`

const headingsHTML = `<html><body>
  <h1><a href="/one">One</a></h1>
  <h2><a href="https://blog.example.com/two">Two</a></h2>
  <h3><a href="/three">Three</a></h3>
  <h2><a href="https://other.org/ad">Sponsored</a></h2>
  <h4><a href="/four">Too deep</a></h4>
</body></html>`

const hackerNewsHTML = `<html><body><table>
  <tr class="athing submission" id="1"><td class="title"><span class="titleline"><a href="https://go.dev/blog/x">Go 2 announced</a><span class="sitebit"> (go.dev)</span></span></td></tr>
  <tr class="athing submission" id="2"><td class="title"><span class="titleline"><a href="item?id=2">Ask HN: testing</a></span></td></tr>
</table></body></html>`

func mustRegistry(t *testing.T, cfg *config.ParserConfig) *Registry {
	t.Helper()
	r, err := NewRegistry(cfg, testLogger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

// --- Selector strategy ---

func TestSelectorStrategyFirstPatternWins(t *testing.T) {
	s := MustSelectorStrategy("thn", []string{"a.story-link", "h2 a"}, "")
	recs, err := s.Extract(theHackerNewsHTML, "https://thehackernews.com/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records from the first pattern, got %d: %+v", len(recs), recs)
	}
	if recs[0].Title != "First story" {
		t.Errorf("title whitespace not collapsed: %q", recs[0].Title)
	}
	if recs[0].Link != "https://thehackernews.com/2025/01/first.html" {
		t.Errorf("relative link not resolved: %q", recs[0].Link)
	}
	for _, r := range recs {
		if r.Link == "https://thehackernews.com/from-heading" {
			t.Error("second pattern must not run once the first yields records")
		}
	}
}

func TestSelectorStrategyFallsThroughEmptyPatterns(t *testing.T) {
	s := MustSelectorStrategy("x", []string{"a.missing", "a.story-link:not([href])", "h2 a"}, "")
	recs, err := s.Extract(theHackerNewsHTML, "https://thehackernews.com/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 1 || recs[0].Link != "https://thehackernews.com/from-heading" {
		t.Fatalf("expected the h2 pattern to produce the heading link, got %+v", recs)
	}
}

func TestSelectorStrategyContentSnippet(t *testing.T) {
	html := `<html><body>
	  <div class="card"><a class="story-link" href="/eur">EUR/USD rallies</a><p class="excerpt">Dollar slips after data.</p></div>
	  <article><h2><a href="/gold">Gold steady</a></h2><div class="summary">Bullion flat.</div></article>
	</body></html>`

	s := MustSelectorStrategy("fx", []string{"a.story-link"}, DefaultContentSelector)
	recs, _ := s.Extract(html, "https://www.fxstreet.com/news")
	if len(recs) != 1 || recs[0].Content != "Dollar slips after data." {
		t.Fatalf("unexpected parent snippet: %+v", recs)
	}

	s = MustSelectorStrategy("fx", []string{"a.nothing", "article h2 a, h2 a"}, DefaultContentSelector)
	recs, _ = s.Extract(html, "https://www.fxstreet.com/news")
	if len(recs) != 1 || recs[0].Title != "Gold steady" {
		t.Fatalf("expected the article headline, got %+v", recs)
	}
	if recs[0].Content != "Bullion flat." {
		t.Errorf("expected article snippet, got %q", recs[0].Content)
	}
}

func TestSelectorStrategyRejectsBadSelector(t *testing.T) {
	if _, err := NewSelectorStrategy("bad", []string{"h2 >> a["}, ""); err == nil {
		t.Error("expected invalid selector error")
	}
	if _, err := NewSelectorStrategy("empty", nil, ""); err == nil {
		t.Error("expected error for empty pattern list")
	}
}

// --- XPath strategy ---

func TestXPathStrategyHackerNews(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{})
	site := r.Resolve(types.Target{Name: "hackernews", URL: "https://news.ycombinator.com/"})
	if site == nil || site.Kind != SiteHackerNews {
		t.Fatalf("expected Hacker News site, got %+v", site)
	}

	recs, err := site.Strategies[0].Extract(hackerNewsHTML, site.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %+v", recs)
	}
	if recs[0].Title != "Go 2 announced" {
		t.Errorf("sitebit leaked into title: %q", recs[0].Title)
	}
	if recs[1].Link != "https://news.ycombinator.com/item?id=2" {
		t.Errorf("relative link not resolved: %q", recs[1].Link)
	}
}

func TestXPathStrategyRejectsBadExpression(t *testing.T) {
	if _, err := NewXPathStrategy("bad", []string{"//tr[@class="}); err == nil {
		t.Error("expected compile error")
	}
}

// --- Generic strategy ---

func TestGenericStrategySameOriginFilter(t *testing.T) {
	recs, err := GenericStrategy{}.Extract(headingsHTML, "https://www.example.com/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var links []string
	for _, r := range recs {
		links = append(links, r.Link)
	}
	want := []string{
		"https://www.example.com/one",
		"https://blog.example.com/two",
		"https://www.example.com/three",
	}
	if strings.Join(links, " ") != strings.Join(want, " ") {
		t.Errorf("got %v, want %v", links, want)
	}
}

func TestGenericStrategyDropsFilterWhenEverythingIsCrossDomain(t *testing.T) {
	html := `<h2><a href="https://a.org/1">A</a></h2><h3><a href="https://b.net/2">B</a></h3>`
	recs, err := GenericStrategy{}.Extract(html, "https://aggregator.example/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected unfiltered candidates, got %+v", recs)
	}
}

func TestGenericStrategyNeverFailsOnBadMarkup(t *testing.T) {
	inputs := []string{
		"",
		"not html at all",
		"<h2><a href='/x'>unterminated",
		"<<<>>><h1><a>no href</a></h1>",
	}
	for _, in := range inputs {
		recs, err := GenericStrategy{}.Extract(in, "https://example.com/")
		if err != nil {
			t.Errorf("input %.20q: unexpected error %v", in, err)
		}
		if len(recs) > 1 {
			t.Errorf("input %.20q: unexpected records %+v", in, recs)
		}
	}
}

// --- Registry ---

func TestRegistryResolve(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})

	tests := []struct {
		target types.Target
		want   SiteKind
	}{
		{types.Target{Name: "The Hacker News", URL: "https://mirror.example/"}, SiteTheHackerNews},
		{types.Target{Name: "thehackernews.com", URL: "https://thehackernews.com/"}, SiteTheHackerNews},
		{types.Target{Name: "hackernews", URL: "https://news.ycombinator.com/"}, SiteHackerNews},
		{types.Target{Name: "x", URL: "https://cybersecuritynews.com/category/"}, SiteCyberSecurityNews},
		{types.Target{Name: "x", URL: "https://www.fxstreet.com/news"}, SiteFXStreet},
		{types.Target{Name: "bleepingcomputer", URL: "https://example.com"}, SiteBleepingComputer},
		{types.Target{Name: "blog", URL: "https://blog.example.com/"}, SiteUnknown},
	}
	for _, tt := range tests {
		if got := r.KindOf(tt.target); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.target, got, tt.want)
		}
	}
}

func TestRegistrySiteStrategyHit(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})
	x := r.Extract(types.Target{Name: "The Hacker News", URL: "https://thehackernews.com/"}, theHackerNewsHTML)

	if x.Tag != "" || x.Diagnostic() != "" {
		t.Errorf("unexpected tag %q", x.Diagnostic())
	}
	if x.Strategy != "thehackernews" || len(x.Records) != 2 {
		t.Errorf("unexpected extraction: %+v", x)
	}
}

func TestRegistryFallsBackToGeneric(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})
	html := `<html><body>
	  <h2><a href="/a">A</a></h2><h2><a href="/b">B</a></h2><h3><a href="/c">C</a></h3>
	</body></html>`

	x := r.Extract(types.Target{Name: "CyberSecurityNews", URL: "https://cybersecuritynews.com/"}, html)
	if x.Tag != types.TagParserFailed {
		t.Fatalf("expected %s, got %q", types.TagParserFailed, x.Tag)
	}
	if !strings.HasPrefix(x.Diagnostic(), "parser_failed: ") {
		t.Errorf("diagnostic %q lacks detail", x.Diagnostic())
	}
	if x.Strategy != GenericName || len(x.Records) != 3 {
		t.Errorf("expected 3 generic records, got %+v", x)
	}
	if !errors.Is(x.Err, types.ErrNoRecordsFound) {
		t.Errorf("expected NoRecordsFound cause, got %v", x.Err)
	}
}

func TestRegistryRecoversPanickingStrategy(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})
	r.sites = append([]*Site{{
		Kind:  SiteCustom,
		Name:  "Flaky",
		Hosts: []string{"flaky.example"},
		Strategies: []Strategy{StrategyFunc{Label: "boom", Fn: func(string, string) ([]types.Headline, error) {
			panic("nil map")
		}}},
	}}, r.sites...)

	x := r.Extract(types.Target{Name: "Flaky", URL: "https://flaky.example/"}, `<h1><a href="/ok">Ok</a></h1>`)
	if x.Tag != types.TagParserFailed {
		t.Fatalf("expected parser_failed, got %q", x.Tag)
	}
	if !errors.Is(x.Err, types.ErrExtractionFailed) {
		t.Errorf("expected ExtractionFailed, got %v", x.Err)
	}
	if len(x.Records) != 1 {
		t.Errorf("expected generic records, got %+v", x.Records)
	}
}

func TestRegistryGenericFailureIsParseFailed(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})
	x := r.Extract(types.Target{Name: "relative", URL: "/not/absolute"}, "<h1><a href='/a'>A</a></h1>")
	if x.Tag != types.TagParseFailed {
		t.Fatalf("expected parse_failed, got %q", x.Tag)
	}
	if len(x.Records) != 0 {
		t.Errorf("expected no records, got %+v", x.Records)
	}
}

func TestRegistryUnknownSite(t *testing.T) {
	target := types.Target{Name: "blog", URL: "https://blog.example.com/"}

	strict := mustRegistry(t, &config.ParserConfig{AllowGeneric: false})
	x := strict.Extract(target, headingsHTML)
	if x.Tag != types.TagNoExtractor || !errors.Is(x.Err, types.ErrNoExtractorAvailable) {
		t.Errorf("expected no_extractor, got %+v", x)
	}

	lenient := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})
	x = lenient.Extract(target, headingsHTML)
	if x.Tag != "" || x.Strategy != GenericName || len(x.Records) == 0 {
		t.Errorf("expected clean generic extraction, got %+v", x)
	}

	x = lenient.Extract(target, "<p>nothing</p>")
	if x.Tag != types.TagNoRecords {
		t.Errorf("expected no_records, got %q", x.Tag)
	}
}

func TestRegistryCustomSites(t *testing.T) {
	cfg := &config.ParserConfig{Sites: []config.SiteConfig{
		{Name: "Example Wire", URL: "https://wire.example.com/", Selectors: []string{"li.story a"}},
		{Name: "Example XP", URL: "https://xp.example.com/", Type: "xpath", Selectors: []string{"//li/a"}},
	}}
	r := mustRegistry(t, cfg)

	x := r.Extract(types.Target{Name: "wire", URL: "https://wire.example.com/"},
		`<ul><li class="story"><a href="/1">One</a></li></ul>`)
	if x.Kind != SiteCustom || len(x.Records) != 1 {
		t.Errorf("unexpected css custom extraction: %+v", x)
	}

	x = r.Extract(types.Target{Name: "Example XP", URL: "https://xp.example.com/"},
		`<ul><li><a href="/1">One</a></li><li><a href="/2">Two</a></li></ul>`)
	if x.Strategy != "examplexp" || len(x.Records) != 2 {
		t.Errorf("unexpected xpath custom extraction: %+v", x)
	}

	_, err := NewRegistry(&config.ParserConfig{Sites: []config.SiteConfig{
		{Name: "Bad", URL: "https://bad.example/", Selectors: []string{"a[[["}},
	}}, testLogger)
	if err == nil {
		t.Error("expected error for invalid custom selector")
	}
}

// --- Lookup ---

func TestLookup(t *testing.T) {
	r := mustRegistry(t, &config.ParserConfig{AllowGeneric: true})

	tests := []struct {
		query   string
		wantURL string
	}{
		{"the hacker news", "https://thehackernews.com/"},
		{"THEHACKERNEWS", "https://thehackernews.com/"},
		{"open cybersecurity news please", "https://cybersecuritynews.com/"},
		{"hackernews", "https://news.ycombinator.com/"},
		{"read me bleeping stuff from bleepingcomputer", "https://www.bleepingcomputer.com/"},
		{"fxstreet", "https://www.fxstreet.com/news"},
		{"example.com", "https://example.com"},
		{"https://golang.org/blog", "https://golang.org/blog"},
	}
	for _, tt := range tests {
		got, err := r.Lookup(tt.query)
		if err != nil {
			t.Errorf("Lookup(%q): %v", tt.query, err)
			continue
		}
		if got.URL != tt.wantURL {
			t.Errorf("Lookup(%q) = %s, want %s", tt.query, got.URL, tt.wantURL)
		}
	}

	if _, err := r.Lookup(""); err == nil {
		t.Error("expected error for empty query")
	}
}

// --- Signature ---

func TestSignature(t *testing.T) {
	a := `<div class="x" id="1"><p>hello</p></div>`
	b := `<div id="2" class="y"><p>changed text</p></div>`
	c := `<div class="x" id="1" data-new="1"><p>hello</p></div>`

	if Signature(a) != Signature(b) {
		t.Error("content-only changes must keep the signature")
	}
	if Signature(a) == Signature(c) {
		t.Error("a new attribute must change the signature")
	}
	if len(Signature("")) != 32 {
		t.Error("expected an md5 hex digest")
	}
}

// --- Benchmarks ---

func BenchmarkGenericStrategy(b *testing.B) {
	html := strings.Repeat(`<h2><a href="/story">Story</a></h2>`, 200)
	for i := 0; i < b.N; i++ {
		_, _ = GenericStrategy{}.Extract(html, "https://example.com/")
	}
}
