package combiner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/audio"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcript-flow/internal/overlap"
	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

// Combine implements Combiner.
func (c *implCombiner) Combine(ctx context.Context, rawURL string) (res Result, err error) {
	started := time.Now()

	t := time.Now()
	ref, err := videoref.Normalize(rawURL)
	res.record(Normalizing, err, t)
	if err != nil {
		res.Final = Failed
		c.logger.Warn(ctx, "Rejected URL %q: %v", rawURL, err)
		return res, err
	}
	res.Reference = ref
	ctx = logger.WithFields(ctx, c.logger, "video_id", ref.VideoID)
	c.logger.Info(ctx, "Building combined transcript: %s", ref.PlatformURL)

	res.Subtitles = c.fetchSubtitles(ctx, ref, &res)

	// From here on the workspace must go away no matter how we leave.
	var ws *audio.Workspace
	defer func() {
		t := time.Now()
		ws.Release(ctx)
		res.record(Cleanup, nil, t)
		res.Final = Done
		metrics.TranscriptDuration.Observe(time.Since(started).Seconds())
		c.logger.Info(ctx, "Combined transcript ready in %s: %d subtitle lines, %d/%d speech segments kept",
			time.Since(started).Round(time.Millisecond), len(res.Subtitles), len(res.Retained), len(res.Speech))
	}()

	t = time.Now()
	ws, wsErr := audio.NewWorkspace(c.opts.TempDir, c.logger)
	var artifact audio.Artifact
	if wsErr == nil {
		artifact, wsErr = c.acquirer.Acquire(ctx, ref, ws)
	}
	res.record(AcquiringAudio, wsErr, t)

	if wsErr != nil {
		c.logger.Warn(ctx, "Audio unavailable, continuing with subtitles only: %v", wsErr)
	} else {
		t = time.Now()
		speech, trErr := c.transcriber.Transcribe(ctx, artifact.Path)
		res.record(Transcribing, trErr, t)
		if trErr != nil {
			c.logger.Warn(ctx, "Transcription failed, continuing with subtitles only: %v", trErr)
		}
		res.Speech = speech

		t = time.Now()
		res.Retained = overlap.Resolve(res.Speech, res.Subtitles, c.threshold)
		res.record(Resolving, nil, t)
		c.logger.Debug(ctx, "Overlap resolved: dropped %d of %d speech segments",
			len(res.Speech)-len(res.Retained), len(res.Speech))
	}

	t = time.Now()
	res.Transcript = Format(res.Subtitles, res.Retained)
	res.record(Combining, nil, t)

	return res, nil
}

func (c *implCombiner) fetchSubtitles(ctx context.Context, ref videoref.Reference, res *Result) subtitle.Track {
	t := time.Now()
	track, err := c.subtitles.Fetch(ctx, ref.VideoID, c.opts.Languages)
	res.record(FetchingSubtitles, err, t)

	switch {
	case err == nil:
		c.logger.Info(ctx, "Fetched %d subtitle lines", len(track))
		return track
	case errors.Is(err, subtitle.ErrUnavailable):
		c.logger.Info(ctx, "No subtitles in %v", c.opts.Languages)
	default:
		c.logger.Warn(ctx, "Subtitle fetch failed: %v", err)
	}
	return nil
}

// GetCombinedTranscript implements Combiner.
func (c *implCombiner) GetCombinedTranscript(ctx context.Context, rawURL string) string {
	res, err := c.Combine(ctx, rawURL)
	if err != nil {
		c.logger.Error(ctx, "No transcript for %q: %v", rawURL, err)
		return ""
	}
	if res.Transcript == "" {
		c.logger.Warn(ctx, "No subtitles or speech found for %s", res.Reference.PlatformURL)
	}
	return res.Transcript
}

// Format renders subtitle lines under SubtitleLabel followed by the speech
// segments, one per line. Both empty gives "".
func Format(subtitles, speech []string) string {
	lines := make([]string, 0, len(subtitles)+len(speech)+1)
	if len(subtitles) > 0 {
		lines = append(lines, SubtitleLabel)
		lines = append(lines, subtitles...)
	}
	lines = append(lines, speech...)
	return strings.Join(lines, "\n")
}

func (r *Result) record(stage Stage, err error, started time.Time) {
	r.Outcomes = append(r.Outcomes, StageOutcome{Stage: stage, Err: err, Duration: time.Since(started)})
	metrics.ObserveStage(stage.String(), err)
}
