package types

import (
	"net/http"
	"time"
)

// Response is the result of a single fetch attempt.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response HTTP headers.
	Headers http.Header

	// Body is the decoded response body.
	Body []byte

	// URL is the requested URL.
	URL string

	// FinalURL is the URL after any redirects.
	FinalURL string

	// FetchDuration is how long the attempt took.
	FetchDuration time.Duration

	// FetchedAt is when the response was received.
	FetchedAt time.Time
}
