package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/dashboard"
	"github.com/IshaanNene/HeadlineGoat/internal/engine"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/pipeline"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

const (
	maxBatchTargets = 50
	maxBodyBytes    = 1 << 20
	noNewsMessage   = "No news scraped."
)

type targetRequest struct {
	Site string `json:"site"`
	URL  string `json:"url"`
}

type batchRequest struct {
	Targets []targetRequest `json:"targets"`
	Keyword string          `json:"keyword"`
}

type siteInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Allowed bool   `json:"allowed"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.scraper.Stats().Snapshot())
}

func (s *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	sites := s.registry.Sites()
	out := make([]siteInfo, 0, len(sites))
	for _, site := range sites {
		out = append(out, siteInfo{
			ID:      site.ID(),
			Name:    site.Name,
			URL:     site.URL,
			Kind:    site.Kind.String(),
			Allowed: s.isAllowed(site),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// DashboardSites lists the sites the API will scrape, for the dashboard picker.
func (s *Server) DashboardSites() []dashboard.Site {
	var out []dashboard.Site
	for _, site := range s.registry.Sites() {
		if s.isAllowed(site) {
			out = append(out, dashboard.Site{ID: site.ID(), Name: site.Name})
		}
	}
	return out
}

// scrapeQuery handles GET /scrape?site=&url=&keyword=.
func (s *Server) scrapeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := s.resolveTarget(q.Get("site"), q.Get("url"))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	opts, err := keywordOptions(q.Get("keyword"))
	if err != nil {
		s.badRequest(w, err)
		return
	}

	report := s.scraper.ScrapeAll(r.Context(), []types.Target{target}, opts...)
	w.Header().Set("X-Run-ID", report.RunID)
	writeJSON(w, http.StatusOK, report)
}

// scrapeBatch handles POST /scrape with a JSON list of targets.
func (s *Server) scrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Targets) == 0 {
		writeError(w, http.StatusBadRequest, "no targets")
		return
	}
	if len(req.Targets) > maxBatchTargets {
		writeError(w, http.StatusBadRequest, "too many targets")
		return
	}

	targets := make([]types.Target, 0, len(req.Targets))
	for _, tr := range req.Targets {
		t, err := s.resolveTarget(tr.Site, tr.URL)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		targets = append(targets, t)
	}
	opts, err := keywordOptions(req.Keyword)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	report := s.scraper.ScrapeAll(r.Context(), targets, opts...)
	w.Header().Set("X-Run-ID", report.RunID)
	writeJSON(w, http.StatusOK, report)
}

// audio handles GET /audio: it scrapes like GET /scrape and returns the
// joined titles as plain text for a speech renderer.
func (s *Server) audio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := s.resolveTarget(q.Get("site"), q.Get("url"))
	if err != nil {
		s.badRequest(w, err)
		return
	}
	opts, err := keywordOptions(q.Get("keyword"))
	if err != nil {
		s.badRequest(w, err)
		return
	}

	report := s.scraper.ScrapeAll(r.Context(), []types.Target{target}, opts...)
	w.Header().Set("X-Run-ID", report.RunID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	text := report.Text()
	if text == "" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(noNewsMessage))
		return
	}
	_, _ = w.Write([]byte(text))
}

// resolveTarget turns request parameters into an allowed target. With only a
// site name the registered URL is used; with neither, the default site.
func (s *Server) resolveTarget(site, rawURL string) (types.Target, error) {
	var (
		target types.Target
		known  *parser.Site
	)
	if rawURL != "" {
		t, err := types.NewTarget(site, rawURL)
		if err != nil {
			return types.Target{}, err
		}
		target, known = t, s.registry.Resolve(t)
	} else {
		if site == "" {
			site = s.cfg.DefaultSite
		}
		known = s.registry.Resolve(types.Target{Name: site})
		if known != nil {
			target = types.Target{Name: known.Name, URL: known.URL}
		}
	}

	if known == nil || !s.isAllowed(known) {
		return types.Target{}, types.ErrSiteNotAllowed
	}
	return target, nil
}

func (s *Server) isAllowed(site *parser.Site) bool {
	return len(s.allowed) == 0 || s.allowed[site.ID()]
}

func keywordOptions(raw string) ([]engine.RunOption, error) {
	if raw == "" {
		return nil, nil
	}
	mw, err := pipeline.NewKeywordFilterMiddleware(raw)
	if err != nil {
		return nil, err
	}
	return []engine.RunOption{engine.WithMiddleware(mw)}, nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	msg := "bad request"
	switch {
	case errors.Is(err, types.ErrSiteNotAllowed):
		msg = "Invalid site selection"
	case errors.Is(err, types.ErrInvalidKeyword):
		msg = "Invalid keyword"
	case errors.Is(err, types.ErrInvalidURL):
		msg = "Invalid URL"
	}
	s.logger.Debug("request rejected", "reason", msg, "error", err)
	writeError(w, http.StatusBadRequest, msg)
}
