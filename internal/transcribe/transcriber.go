package transcribe

import (
	"context"
	"time"
)

// Transcribe implements Transcriber. Inference runs one call at a time per Transcriber.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath string) (Transcript, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	model, err := t.model.Get(ctx)
	if err != nil {
		return nil, &TranscriptionError{Path: audioPath, Err: err}
	}

	t.logger.Info(ctx, "Transcribing with %s: %s", model.Name(), audioPath)
	start := time.Now()

	res, err := model.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, &TranscriptionError{Path: audioPath, Err: err}
	}

	sentences := SplitSentences(res.Text)
	t.logger.Info(ctx, "Transcription finished in %s: %d sentences (language=%s)",
		time.Since(start).Round(time.Millisecond), len(sentences), res.Language)
	return sentences, nil
}
