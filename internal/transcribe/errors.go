package transcribe

import (
	"errors"
	"fmt"
)

// ErrTranscription matches every *TranscriptionError.
var ErrTranscription = errors.New("transcription failed")

// TranscriptionError reports a model load or inference failure.
type TranscriptionError struct {
	Path string
	Err  error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe %s: %v", e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

func (e *TranscriptionError) Is(target error) bool { return target == ErrTranscription }
