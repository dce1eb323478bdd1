package processor

import (
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/extract"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/storage"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
)

// Options tunes a Processor.
type Options struct {
	ArchivedDir       string
	FailedDir         string
	TempDir           string
	MaxConcurrent     int
	TranscriptTimeout time.Duration
}

// Deps are the collaborators of a Processor. Summarizer may be nil.
type Deps struct {
	Combiner   combiner.Combiner
	Extractor  extract.Extractor
	Summarizer summarizer.Summarizer
	Store      storage.Store
}

type implProcessor struct {
	opts      Options
	deps      Deps
	semaphore *semaphore
	logger    logger.Logger
}

// New creates a new Processor instance
func New(opts Options, deps Deps, log logger.Logger) Processor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	return &implProcessor{
		opts:      opts,
		deps:      deps,
		semaphore: newSemaphore(opts.MaxConcurrent),
		logger:    log,
	}
}

func (p *implProcessor) ActiveJobs() int { return p.semaphore.active() }

func (p *implProcessor) Capacity() int { return p.semaphore.capacity() }
