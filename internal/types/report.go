package types

import (
	"encoding/json"
	"strings"
	"time"
)

// SiteResult is the outcome of scraping one Target.
type SiteResult struct {
	Site  string     `json:"site"            yaml:"site"            bson:"site"`
	URL   string     `json:"url"             yaml:"url"             bson:"url"`
	OK    bool       `json:"ok"              yaml:"ok"              bson:"ok"`
	Items []Headline `json:"items"           yaml:"items"           bson:"items"`
	Error string     `json:"error,omitempty" yaml:"error,omitempty" bson:"error,omitempty"`
}

// NewSiteResult builds a result for target. OK is derived from items.
func NewSiteResult(t Target, items []Headline, errTag string) SiteResult {
	if items == nil {
		items = []Headline{}
	}
	return SiteResult{
		Site:  t.Name,
		URL:   t.URL,
		OK:    len(items) > 0,
		Items: items,
		Error: errTag,
	}
}

// FailedSiteResult builds a result with no items.
func FailedSiteResult(t Target, errTag string) SiteResult {
	return NewSiteResult(t, nil, errTag)
}

// Report aggregates the results of one run, in submission order.
type Report struct {
	OK      bool         `json:"ok"      yaml:"ok"      bson:"ok"`
	Count   int          `json:"count"   yaml:"count"   bson:"count"`
	Results []SiteResult `json:"results" yaml:"results" bson:"results"`

	// RunID and timing are carried for logs and sinks; they are not part of the JSON document.
	RunID      string        `json:"-" yaml:"-" bson:"run_id"`
	StartedAt  time.Time     `json:"-" yaml:"-" bson:"started_at"`
	FinishedAt time.Time     `json:"-" yaml:"-" bson:"finished_at"`
	Elapsed    time.Duration `json:"-" yaml:"-" bson:"-"`
}

// NewReport assembles a report from ordered results.
func NewReport(results []SiteResult) *Report {
	if results == nil {
		results = []SiteResult{}
	}
	return &Report{
		OK:      true,
		Count:   len(results),
		Results: results,
	}
}

// Succeeded returns how many sites produced at least one headline.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK {
			n++
		}
	}
	return n
}

// Titles returns every headline title in report order.
func (r *Report) Titles() []string {
	var titles []string
	for _, res := range r.Results {
		for _, item := range res.Items {
			titles = append(titles, item.Title)
		}
	}
	return titles
}

// Text joins all titles with a space. This is the text handed to speech rendering.
func (r *Report) Text() string {
	return strings.Join(r.Titles(), " ")
}

// JSON renders the report document.
func (r *Report) JSON(indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}
