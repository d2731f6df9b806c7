package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTarget(t *testing.T) {
	tgt, err := NewTarget("", "https://thehackernews.com/")
	require.NoError(t, err)
	assert.Equal(t, "thehackernews.com", tgt.Name)
	assert.Equal(t, "thehackernews.com", tgt.Host())

	_, err = NewTarget("x", "ftp://example.com")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = NewTarget("x", "https://")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestSiteResultOKFollowsItems(t *testing.T) {
	tgt := Target{Name: "a", URL: "https://a.example/"}

	empty := NewSiteResult(tgt, nil, "")
	assert.False(t, empty.OK)
	assert.NotNil(t, empty.Items)

	full := NewSiteResult(tgt, []Headline{{Title: "t", Link: "https://a.example/t"}}, TagParserFailed)
	assert.True(t, full.OK)
	assert.Equal(t, TagParserFailed, full.Error)
}

func TestReportDocumentShape(t *testing.T) {
	tgt := Target{Name: "a", URL: "https://a.example/"}
	r := NewReport([]SiteResult{
		NewSiteResult(tgt, []Headline{{Title: "One", Link: "https://a.example/1"}}, ""),
		FailedSiteResult(tgt, TagFetchFailed),
	})
	r.RunID = "run-1"

	data, err := r.JSON(false)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, true, doc["ok"])
	assert.EqualValues(t, 2, doc["count"])
	assert.NotContains(t, doc, "RunID")

	results := doc["results"].([]any)
	first := results[0].(map[string]any)
	assert.NotContains(t, first, "error")
	item := first["items"].([]any)[0].(map[string]any)
	assert.NotContains(t, item, "content")

	second := results[1].(map[string]any)
	assert.Equal(t, []any{}, second["items"])
	assert.Equal(t, "fetch_failed", second["error"])
}

func TestReportText(t *testing.T) {
	r := NewReport([]SiteResult{
		{Items: []Headline{{Title: "A"}, {Title: "B"}}},
		{Items: []Headline{}},
		{Items: []Headline{{Title: "C"}}},
	})
	assert.Equal(t, "A B C", r.Text())
	assert.Equal(t, 0, r.Succeeded())
	assert.Empty(t, NewReport(nil).Text())
}

func TestErrorTaxonomy(t *testing.T) {
	fe := &FetchError{URL: "https://x", StatusCode: 503, Err: errors.New("boom")}
	assert.ErrorIs(t, fe, ErrFetchFailed)
	assert.Contains(t, fe.Error(), "status 503")

	ee := &ExtractError{Site: "x", Strategy: "generic", Err: errors.New("bad")}
	assert.ErrorIs(t, ee, ErrExtractionFailed)

	var target *ExtractError
	assert.True(t, errors.As(error(ee), &target))
}
