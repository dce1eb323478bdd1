package audio

import (
	"errors"
	"fmt"
)

// ErrAcquisition matches every *AcquisitionError.
var ErrAcquisition = errors.New("audio acquisition failed")

// AcquisitionError reports why audio could not be obtained for a video.
type AcquisitionError struct {
	URL   string
	Stage string // "download", "verify" or "convert"
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire audio for %s (%s): %v", e.URL, e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

func (e *AcquisitionError) Is(target error) bool { return target == ErrAcquisition }
