package audio

import (
	"context"

	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

// Artifact is the transcoded speech audio inside a Workspace.
type Artifact struct {
	Path string
}

// Acquirer downloads the audio track of a video and prepares it for transcription.
type Acquirer interface {
	Acquire(ctx context.Context, ref videoref.Reference, ws *Workspace) (Artifact, error)
}
