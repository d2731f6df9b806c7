package types

// FetchOutcome is the result of a full retrying fetch: either a body or a failure.
type FetchOutcome struct {
	Body     string
	FinalURL string
	Attempts int
	Err      *FetchError
}

// Succeeded returns a successful outcome.
func Succeeded(body, finalURL string, attempts int) FetchOutcome {
	return FetchOutcome{Body: body, FinalURL: finalURL, Attempts: attempts}
}

// Failed returns a failed outcome wrapping err.
func Failed(err *FetchError) FetchOutcome {
	return FetchOutcome{Attempts: err.Attempts, Err: err}
}

// Ok reports whether the fetch produced a body.
func (o FetchOutcome) Ok() bool { return o.Err == nil }

// Detail is a short human-readable description of the failure, or "".
func (o FetchOutcome) Detail() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
