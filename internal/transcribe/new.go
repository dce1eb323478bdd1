package transcribe

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

// Options selects and configures the speech model backend.
type Options struct {
	Backend string // "cli" or "http"
	CLI     CLIOptions
	HTTP    HTTPOptions
}

type implTranscriber struct {
	model  *Lazy
	mu     sync.Mutex
	logger logger.Logger
}

// New creates a Transcriber whose model is loaded on first use.
func New(load Loader, log logger.Logger) Transcriber {
	return &implTranscriber{
		model:  NewLazy(load),
		logger: log,
	}
}

// NewLoader returns a Loader for the configured backend.
func NewLoader(opts Options, exec executor.Executor) Loader {
	return func(ctx context.Context) (Model, error) {
		switch opts.Backend {
		case "", "cli":
			m, err := NewWhisperCLI(opts.CLI, exec)
			if err != nil {
				return nil, err
			}
			return m, nil
		case "http":
			if opts.HTTP.URL == "" {
				return nil, fmt.Errorf("whisper http backend needs a url")
			}
			return NewWhisperHTTP(opts.HTTP), nil
		default:
			return nil, fmt.Errorf("unknown whisper backend %q", opts.Backend)
		}
	}
}
