// Package dashboard serves a small HTML page for trying the API from a browser.
package dashboard

import (
	"bytes"
	"log/slog"
	"net/http"
)

// Site is one entry of the site picker.
type Site struct {
	ID   string
	Name string
}

// SiteLister provides the sites offered on the page.
type SiteLister interface {
	DashboardSites() []Site
}

// Dashboard renders the page.
type Dashboard struct {
	sites   SiteLister
	version string
	logger  *slog.Logger
}

// New creates a dashboard for the given sites.
func New(sites SiteLister, version string, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		sites:   sites,
		version: version,
		logger:  logger.With("component", "dashboard"),
	}
}

// ServeHTTP renders the page with the current site list.
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Version string
		Sites   []Site
	}{d.version, d.sites.DashboardSites()})
	if err != nil {
		d.logger.Error("render dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
