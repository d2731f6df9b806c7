package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(&TrimMiddleware{})

	h := &types.Headline{Title: "  Hello   World  ", Link: " https://example.com/a ", Content: "\n spaces \t"}
	result, err := p.Process(h)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	if result.Title != "Hello World" {
		t.Errorf("expected trimmed title, got %q", result.Title)
	}
	if result.Link != "https://example.com/a" {
		t.Errorf("expected trimmed link, got %q", result.Link)
	}
	if result.Content != "spaces" {
		t.Errorf("expected trimmed content, got %q", result.Content)
	}
}

func TestRequiredFieldsMiddleware(t *testing.T) {
	m := &RequiredFieldsMiddleware{}

	result, err := m.Process(&types.Headline{Title: "Hello", Link: "https://example.com"})
	if err != nil || result == nil {
		t.Error("complete headline should pass")
	}

	result, _ = m.Process(&types.Headline{Title: "   ", Link: "https://example.com"})
	if result != nil {
		t.Error("blank title should be dropped")
	}

	result, _ = m.Process(&types.Headline{Title: "No link"})
	if result != nil {
		t.Error("missing link should be dropped")
	}
}

func TestHTMLSanitizeMiddleware(t *testing.T) {
	m := NewHTMLSanitizeMiddleware()
	h := &types.Headline{
		Title:   `Patch &lt;b&gt;now&lt;/b&gt; &amp; reboot`,
		Content: `<p>Hello <b>World</b></p>`,
	}

	result, err := m.Process(h)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Title != "Patch now & reboot" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if result.Content != "Hello World" {
		t.Errorf("unexpected content %q", result.Content)
	}
}

func TestTruncateMiddleware(t *testing.T) {
	m := &TruncateMiddleware{MaxLen: 5}

	result, _ := m.Process(&types.Headline{Title: "Ünïcödé title"})
	if result.Title != "Ünïcö..." {
		t.Errorf("unexpected truncation %q", result.Title)
	}

	result, _ = m.Process(&types.Headline{Title: "short"})
	if result.Title != "short" {
		t.Errorf("short titles must be untouched, got %q", result.Title)
	}
}

func TestSanitizeKeyword(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"ransomware", "ransomware", false},
		{"  zero-day! ", "zero-day", false},
		{"<script>alert(1)</script>", "scriptalert1script", false},
		{"cve 2024", "cve 2024", false},
		{"$$$", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := SanitizeKeyword(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeKeyword(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, types.ErrInvalidKeyword) {
			t.Errorf("SanitizeKeyword(%q) error should wrap ErrInvalidKeyword", tt.raw)
		}
		if got != tt.want {
			t.Errorf("SanitizeKeyword(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestKeywordFilterMiddleware(t *testing.T) {
	m, err := NewKeywordFilterMiddleware("Ransomware!")
	if err != nil {
		t.Fatalf("NewKeywordFilterMiddleware: %v", err)
	}
	if m.Keyword() != "Ransomware" {
		t.Errorf("keyword not sanitized: %q", m.Keyword())
	}

	if r, _ := m.Process(&types.Headline{Title: "New RANSOMWARE strain spotted"}); r == nil {
		t.Error("case-insensitive match should be kept")
	}
	if r, _ := m.Process(&types.Headline{Title: "Phishing kit sold", Content: "ransomware"}); r != nil {
		t.Error("keyword only in content should not match")
	}
}

func TestPipelineDropsAndRun(t *testing.T) {
	p, err := FromConfig(&config.PipelineConfig{StripHTML: true, Keyword: "go"}, testLogger)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if p.Len() != 4 {
		t.Errorf("expected 4 middlewares, got %d", p.Len())
	}

	out := p.Run([]types.Headline{
		{Title: "Go 1.24 released", Link: "https://go.dev/1"},
		{Title: "Rust news", Link: "https://rust.dev/2"},
		{Title: "  ", Link: "https://go.dev/3"},
		{Title: "Going <em>fast</em>", Link: "https://go.dev/4"},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %+v", out)
	}
	if out[0].Title != "Go 1.24 released" || out[1].Title != "Going fast" {
		t.Errorf("unexpected order or content: %+v", out)
	}
}

func TestFromConfigRejectsEmptyKeyword(t *testing.T) {
	if _, err := FromConfig(&config.PipelineConfig{Keyword: "!!!"}, testLogger); err == nil {
		t.Error("expected error for keyword that sanitizes to nothing")
	}
}

func TestPipelineWithDoesNotMutate(t *testing.T) {
	base := New(testLogger)
	base.Use(&TrimMiddleware{})

	kw, _ := NewKeywordFilterMiddleware("go")
	extended := base.With(kw)

	if base.Len() != 1 || extended.Len() != 2 {
		t.Errorf("With mutated receiver: base=%d extended=%d", base.Len(), extended.Len())
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "failing" }

func (failingMiddleware) Process(*types.Headline) (*types.Headline, error) {
	return nil, errors.New("boom")
}

func TestPipelineError(t *testing.T) {
	p := New(testLogger)
	p.Use(failingMiddleware{})

	_, err := p.Process(&types.Headline{Title: "x", Link: "https://x"})
	var pe *types.PipelineError
	if !errors.As(err, &pe) || pe.Stage != "failing" {
		t.Fatalf("expected PipelineError at stage failing, got %v", err)
	}

	if out := p.Run([]types.Headline{{Title: "x", Link: "https://x"}}); len(out) != 0 {
		t.Errorf("failing records should be dropped, got %+v", out)
	}
}
