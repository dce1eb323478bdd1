package transcribe

import "context"

// Result is the raw output of a speech model: one unsegmented string.
type Result struct {
	Text     string
	Language string
	Duration float64
}

// Model is a loaded speech-to-text model.
type Model interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
	Name() string
}

// Loader loads a Model. It is called at most once per successful load.
type Loader func(ctx context.Context) (Model, error)

// Transcript is the speech of a video split into sentence fragments, in spoken order.
type Transcript []string

// Transcriber turns an audio file into a Transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Transcript, error)
}
