package transcript

import (
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Error kinds surfaced by the pipeline. Match with errors.Is.
var (
	ErrInvalidURL          = errors.New("invalid video url")
	ErrNoCaptionsAvailable = errors.New("no captions available")
	ErrProxyUnavailable    = errors.New("proxy unavailable")
	ErrFetchFailed         = errors.New("fetch failed")
	ErrNoCaptionData       = errors.New("no caption data in page")
	ErrNoTranscriptEntries = errors.New("no transcript entries")
)

// Stage names the pipeline step a TranscriptError came from.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageParse   Stage = "parse"
)

// TranscriptError wraps a failure with the stage (and source, when one was involved)
// where the run broke.
type TranscriptError struct {
	Stage  Stage
	Source string
	Cause  error
}

func (e *TranscriptError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s %s: %v", e.Source, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *TranscriptError) Unwrap() error { return e.Cause }

// HTTPStatusError is a non-2xx response. It matches ErrFetchFailed.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, engine.RedactURL(e.URL))
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrFetchFailed }

// Temporary reports whether the status usually clears on its own (429, 5xx).
func (e *HTTPStatusError) Temporary() bool { return engine.IsRetryableStatus(e.StatusCode) }

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// IsTemporary reports whether any error in err's tree is a status that usually
// clears on its own, so the caller may try again later.
func IsTemporary(err error) bool {
	if t, ok := err.(interface{ Temporary() bool }); ok && t.Temporary() {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if IsTemporary(e) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsTemporary(u.Unwrap())
	}
	return false
}
