package summarizer

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// generateFunc sends prompt to model using key and returns the raw text reply.
type generateFunc func(ctx context.Context, key, model, prompt string) (string, error)

// readImageFunc sends prompt plus one inline image and returns the raw text reply.
type readImageFunc func(ctx context.Context, key, model, prompt string, data []byte, mimeType string) (string, error)

type implSummarizer struct {
	apiKeys    []string
	mu         sync.Mutex
	currentKey int
	logger     logger.Logger
	model      string
	generate   generateFunc
	readImage  readImageFunc
}

// New creates a Gemini client that rotates through the supplied API keys.
func New(apiKeys []string, model string, log logger.Logger) Gemini {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &implSummarizer{
		apiKeys:  apiKeys,
		logger:   log,
		model:    model,
		generate:  geminiGenerate,
		readImage: geminiReadImage,
	}
}
