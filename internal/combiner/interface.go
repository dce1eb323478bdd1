package combiner

import (
	"context"

	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcribe"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

// SubtitleLabel heads the subtitle block of a combined transcript.
const SubtitleLabel = "[Based on YouTube subtitles]"

// Result is everything one invocation produced.
type Result struct {
	Reference  videoref.Reference
	Subtitles  subtitle.Track
	Speech     transcribe.Transcript
	Retained   []string
	Transcript string
	Outcomes   []StageOutcome
	Final      Stage
}

// Combiner produces combined transcripts.
type Combiner interface {
	// Combine runs every stage for rawURL. The only error it returns wraps
	// videoref.ErrInvalidReference; source failures degrade to empty sources.
	Combine(ctx context.Context, rawURL string) (Result, error)

	// GetCombinedTranscript never fails: on total failure it logs and returns "".
	GetCombinedTranscript(ctx context.Context, rawURL string) string
}
