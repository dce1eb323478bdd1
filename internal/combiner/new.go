package combiner

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/audio"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/overlap"
	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcribe"
)

// Options tunes a Combiner.
type Options struct {
	Languages []string
	Threshold *int // nil uses overlap.DefaultThreshold
	TempDir   string
}

type implCombiner struct {
	opts        Options
	threshold   int
	subtitles   subtitle.Fetcher
	acquirer    audio.Acquirer
	transcriber transcribe.Transcriber
	logger      logger.Logger
}

// New creates a Combiner from its collaborators.
func New(opts Options, subs subtitle.Fetcher, acq audio.Acquirer, tr transcribe.Transcriber, log logger.Logger) Combiner {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"ko", "en"}
	}
	threshold := overlap.DefaultThreshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	return &implCombiner{
		opts:        opts,
		threshold:   threshold,
		subtitles:   subs,
		acquirer:    acq,
		transcriber: tr,
		logger:      log,
	}
}
