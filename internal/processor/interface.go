package processor

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
)

// ErrNoContent means neither a transcript nor page text could be produced.
var ErrNoContent = errors.New("no content produced")

const (
	KindVideo = "video"
	KindPage  = "page"
)

// Job is the record of one processed URL.
type Job struct {
	ID         string                  `json:"id"`
	URL        string                  `json:"url"`
	Kind       string                  `json:"kind"`
	VideoID    string                  `json:"video_id,omitempty"`
	Title      string                  `json:"title,omitempty"`
	Thumbnail  string                  `json:"thumbnail_url,omitempty"`
	Transcript string                  `json:"-"`
	Digest     *summarizer.Digest      `json:"digest,omitempty"`
	Stages     []combiner.StageOutcome `json:"stages,omitempty"`
	Outputs    map[string]string       `json:"outputs,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
}

// Processor turns URLs into stored transcripts and digests.
type Processor interface {
	// Process handles one URL: a video gets a combined transcript, anything else
	// has its readable text extracted. Both are summarized and persisted.
	Process(ctx context.Context, url string) (Job, error)

	// ProcessFile processes every URL listed in a request file, then archives it.
	ProcessFile(ctx context.Context, path string) error

	// ActiveJobs and Capacity report slot usage.
	ActiveJobs() int
	Capacity() int
}
