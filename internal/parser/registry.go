package parser

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Extraction is the result of running the fallback chain for one target.
type Extraction struct {
	Kind     SiteKind
	Strategy string // strategy that produced Records, "" if none did
	Records  []types.Headline
	Tag      string // one of the types.Tag* values, "" on a clean site-specific hit
	Err      error
}

// Diagnostic renders the text for SiteResult.Error: the tag alone, or "tag: detail".
func (x Extraction) Diagnostic() string {
	if x.Tag == "" {
		return ""
	}
	if x.Err == nil {
		return x.Tag
	}
	return x.Tag + ": " + x.Err.Error()
}

// Registry maps targets to site kinds and runs their strategies with the
// generic fallback.
type Registry struct {
	sites        []*Site
	generic      Strategy
	allowGeneric bool
	logger       *slog.Logger
}

// NewRegistry builds the registry from the built-in sites plus any configured ones.
func NewRegistry(cfg *config.ParserConfig, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		sites:        builtinSites(),
		generic:      GenericStrategy{},
		allowGeneric: cfg.AllowGeneric,
		logger:       logger.With("component", "registry"),
	}
	for _, sc := range cfg.Sites {
		site, err := customSite(sc)
		if err != nil {
			return nil, err
		}
		r.sites = append(r.sites, site)
	}
	return r, nil
}

func customSite(sc config.SiteConfig) (*Site, error) {
	var (
		strategy Strategy
		err      error
	)
	switch sc.Type {
	case "", "css":
		strategy, err = NewSelectorStrategy(normalizeName(sc.Name), sc.Selectors, sc.Content)
	case "xpath":
		strategy, err = NewXPathStrategy(normalizeName(sc.Name), sc.Selectors)
	default:
		err = fmt.Errorf("unknown strategy type %q", sc.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", sc.Name, err)
	}

	t, err := types.NewTarget(sc.Name, sc.URL)
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", sc.Name, err)
	}
	return &Site{
		Kind:       SiteCustom,
		Name:       sc.Name,
		URL:        t.URL,
		Hosts:      []string{t.Host()},
		Strategies: []Strategy{strategy},
	}, nil
}

// Sites returns the known sites in registration order.
func (r *Registry) Sites() []*Site {
	out := make([]*Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// Resolve finds the site for a target: by name first, then by host substring.
// It returns nil for targets with no registered strategies.
func (r *Registry) Resolve(t types.Target) *Site {
	norm := normalizeName(t.Name)
	for _, s := range r.sites {
		if s.matchesName(norm) {
			return s
		}
	}
	host := t.Host()
	for _, s := range r.sites {
		if s.matchesHost(host) {
			return s
		}
	}
	return nil
}

// KindOf is Resolve reduced to the site kind.
func (r *Registry) KindOf(t types.Target) SiteKind {
	if s := r.Resolve(t); s != nil {
		return s.Kind
	}
	return SiteUnknown
}

// Extract runs the chain for one target's markup:
// site strategies in order (first non-empty wins), then the generic strategy.
// It never panics; strategy panics surface as ExtractionFailed.
func (r *Registry) Extract(t types.Target, markup string) Extraction {
	site := r.Resolve(t)
	logger := r.logger.With("site", t.Name)

	if site == nil && !r.allowGeneric {
		return Extraction{Kind: SiteUnknown, Tag: types.TagNoExtractor, Err: types.ErrNoExtractorAvailable}
	}

	kind := SiteUnknown
	var siteErr error
	if site != nil {
		kind = site.Kind
		for _, s := range site.Strategies {
			records, err := safeExtract(t.Name, s, markup, t.URL)
			if err != nil {
				logger.Warn("site strategy failed", "strategy", s.Name(), "error", err)
				siteErr = err
				continue
			}
			if len(records) > 0 {
				return Extraction{Kind: kind, Strategy: s.Name(), Records: records}
			}
			logger.Debug("site strategy found nothing", "strategy", s.Name())
		}
		if siteErr == nil {
			siteErr = fmt.Errorf("%w by site strategies", types.ErrNoRecordsFound)
		}
	}

	records, err := safeExtract(t.Name, r.generic, markup, t.URL)
	if err != nil {
		logger.Error("generic strategy failed", "error", err)
		return Extraction{Kind: kind, Tag: types.TagParseFailed, Err: err}
	}

	x := Extraction{Kind: kind, Records: records}
	if len(records) > 0 {
		x.Strategy = r.generic.Name()
	}
	switch {
	case site != nil:
		x.Tag = types.TagParserFailed
		x.Err = siteErr
	case len(records) == 0:
		x.Tag = types.TagNoRecords
		x.Err = types.ErrNoRecordsFound
	}
	return x
}
