package subtitle

import (
	"errors"
	"fmt"
)

// ErrUnavailable means the video has no caption track in any requested language.
var ErrUnavailable = errors.New("no subtitles available")

// FetchError reports a transport or service fault while retrieving captions.
type FetchError struct {
	VideoID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch subtitles for %s: %v", e.VideoID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports that the caller may try again later.
func (e *FetchError) Retryable() bool { return true }
