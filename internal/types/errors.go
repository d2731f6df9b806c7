package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of a site scrape.
var (
	ErrFetchFailed          = errors.New("fetch failed")
	ErrNoExtractorAvailable = errors.New("no extractor available")
	ErrExtractionFailed     = errors.New("extraction failed")
	ErrNoRecordsFound       = errors.New("no records found")
	ErrInvalidURL           = errors.New("invalid URL")
	ErrInvalidKeyword       = errors.New("invalid keyword")
	ErrSiteNotAllowed       = errors.New("site not allowed")
)

// Error tags reported in SiteResult.Error.
const (
	TagFetchFailed  = "fetch_failed"
	TagNoExtractor  = "no_extractor"
	TagParserFailed = "parser_failed" // site strategy failed or was empty, generic used
	TagParseFailed  = "parse_failed"  // generic strategy itself failed
	TagNoRecords    = "no_records"
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// Is lets errors.Is(err, ErrFetchFailed) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// ExtractError wraps errors raised by an extraction strategy.
type ExtractError struct {
	Site     string
	Strategy string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s (strategy=%q): %v", e.Site, e.Strategy, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExtractionFailed) match any ExtractError.
func (e *ExtractError) Is(target error) bool { return target == ErrExtractionFailed }

// StorageError wraps errors that occur while exporting a report.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the headline pipeline.
type PipelineError struct {
	Stage    string
	Headline Headline
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
