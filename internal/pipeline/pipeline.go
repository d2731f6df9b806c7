package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Middleware processes a headline and returns the (possibly modified) headline.
// Return nil to drop the headline from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a headline. Return nil to drop it.
	Process(h *types.Headline) (*types.Headline, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds the standard chain: sanitize, trim, require title and
// link, truncate, then keyword filter.
func FromConfig(cfg *config.PipelineConfig, logger *slog.Logger) (*Pipeline, error) {
	p := New(logger)
	if cfg.StripHTML {
		p.Use(NewHTMLSanitizeMiddleware())
	}
	p.Use(&TrimMiddleware{})
	p.Use(&RequiredFieldsMiddleware{})
	if cfg.MaxTitleLen > 0 {
		p.Use(&TruncateMiddleware{MaxLen: cfg.MaxTitleLen})
	}
	if cfg.Keyword != "" {
		kw, err := NewKeywordFilterMiddleware(cfg.Keyword)
		if err != nil {
			return nil, err
		}
		p.Use(kw)
	}
	return p, nil
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// With returns a copy of the pipeline with mw appended. The receiver is unchanged,
// so a shared pipeline can be extended per run.
func (p *Pipeline) With(mw Middleware) *Pipeline {
	chain := make([]Middleware, len(p.middlewares), len(p.middlewares)+1)
	copy(chain, p.middlewares)
	return &Pipeline{middlewares: append(chain, mw), logger: p.logger}
}

// Process runs the headline through all middleware in order.
func (p *Pipeline) Process(h *types.Headline) (*types.Headline, error) {
	current := h

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:    mw.Name(),
				Headline: *current,
				Err:      err,
			}
		}
		if result == nil {
			p.logger.Debug("headline dropped", "stage", mw.Name(), "link", h.Link)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Run processes records in order and returns the survivors. A record whose
// processing fails is logged and dropped; one bad record never fails the batch.
func (p *Pipeline) Run(records []types.Headline) []types.Headline {
	out := make([]types.Headline, 0, len(records))
	for i := range records {
		h := records[i]
		result, err := p.Process(&h)
		if err != nil {
			p.logger.Warn("headline rejected", "error", err)
			continue
		}
		if result != nil {
			out = append(out, *result)
		}
	}
	return out
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
