package summarizer

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when there is nothing to summarize.
var ErrEmptyContent = errors.New("empty content")

// Digest is the LLM's reading of one transcript or page.
type Digest struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Summarizer turns text into a Digest.
type Summarizer interface {
	Summarize(ctx context.Context, source, content string) (Digest, error)
}

// ImageReader transcribes the text visible in an image.
type ImageReader interface {
	ReadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Gemini summarizes text and reads images with the same rotating key set.
type Gemini interface {
	Summarizer
	ImageReader
}
