package combiner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/audio"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcribe"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	track subtitle.Track
	err   error
	langs []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID string, languages []string) (subtitle.Track, error) {
	f.langs = languages
	return f.track, f.err
}

// fakeAcquirer writes a partial artifact into the workspace before deciding the outcome.
type fakeAcquirer struct {
	err      error
	lastPath string
}

func (f *fakeAcquirer) Acquire(ctx context.Context, ref videoref.Reference, ws *audio.Workspace) (audio.Artifact, error) {
	f.lastPath = ws.Path("audio.wav")
	if err := os.WriteFile(ws.Path("audio.mp3"), []byte("partial"), 0644); err != nil {
		return audio.Artifact{}, err
	}
	if f.err != nil {
		return audio.Artifact{}, f.err
	}
	if err := os.WriteFile(f.lastPath, []byte("RIFF"), 0644); err != nil {
		return audio.Artifact{}, err
	}
	return audio.Artifact{Path: f.lastPath}, nil
}

type fakeTranscriber struct {
	speech transcribe.Transcript
	err    error
	calls  int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (transcribe.Transcript, error) {
	f.calls++
	return f.speech, f.err
}

type fixture struct {
	fetcher     *fakeFetcher
	acquirer    *fakeAcquirer
	transcriber *fakeTranscriber
	tempDir     string
	combiner    Combiner
}

func newFixture(t *testing.T, f *fakeFetcher, a *fakeAcquirer, tr *fakeTranscriber) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		fetcher:     f,
		acquirer:    a,
		transcriber: tr,
		tempDir:     dir,
		combiner:    New(Options{TempDir: dir}, f, a, tr, logger.Nop()),
	}
}

func (fx *fixture) assertNoArtifacts(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(fx.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace left behind")
	if fx.acquirer.lastPath != "" {
		assert.NoFileExists(t, fx.acquirer.lastPath)
	}
}

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestCombineSubtitlesAndSpeech(t *testing.T) {
	fx := newFixture(t,
		&fakeFetcher{track: subtitle.Track{"Hello world", "This is a test."}},
		&fakeAcquirer{},
		&fakeTranscriber{speech: transcribe.Transcript{"Hello world", "This is a test", "Goodbye"}},
	)

	res, err := fx.combiner.Combine(context.Background(), testURL)
	require.NoError(t, err)

	assert.Equal(t, "[Based on YouTube subtitles]\nHello world\nThis is a test.\nGoodbye", res.Transcript)
	assert.Equal(t, []string{"Goodbye"}, res.Retained)
	assert.Equal(t, "dQw4w9WgXcQ", res.Reference.VideoID)
	assert.Equal(t, Done, res.Final)
	assert.Equal(t, []string{"ko", "en"}, fx.fetcher.langs)

	var stages []Stage
	for _, o := range res.Outcomes {
		stages = append(stages, o.Stage)
		assert.False(t, o.Failed(), o.Stage.String())
	}
	assert.Equal(t, []Stage{Normalizing, FetchingSubtitles, AcquiringAudio, Transcribing, Resolving, Combining, Cleanup}, stages)
	fx.assertNoArtifacts(t)
}

func TestCombineExplicitZeroThreshold(t *testing.T) {
	f := &fakeFetcher{track: subtitle.Track{"Hello world"}}
	tr := &fakeTranscriber{speech: transcribe.Transcript{"Completely unrelated"}}
	zero := 0
	c := New(Options{TempDir: t.TempDir(), Threshold: &zero}, f, &fakeAcquirer{}, tr, logger.Nop())

	res, err := c.Combine(context.Background(), testURL)
	require.NoError(t, err)
	assert.Empty(t, res.Retained, "a zero threshold treats every pair as a duplicate")
}

func TestCombineAudioFailure(t *testing.T) {
	fx := newFixture(t,
		&fakeFetcher{track: subtitle.Track{"Hello world", "This is a test."}},
		&fakeAcquirer{err: &audio.AcquisitionError{URL: testURL, Stage: "download", Err: errors.New("HTTP 403")}},
		&fakeTranscriber{speech: transcribe.Transcript{"never used"}},
	)

	got := fx.combiner.GetCombinedTranscript(context.Background(), testURL)
	assert.Equal(t, "[Based on YouTube subtitles]\nHello world\nThis is a test.", got)
	assert.Equal(t, 0, fx.transcriber.calls)
	fx.assertNoArtifacts(t)
}

func TestCombineTotalFailure(t *testing.T) {
	fx := newFixture(t,
		&fakeFetcher{err: &subtitle.FetchError{VideoID: "dQw4w9WgXcQ", Err: errors.New("connection reset")}},
		&fakeAcquirer{},
		&fakeTranscriber{err: &transcribe.TranscriptionError{Path: "audio.wav", Err: errors.New("model missing")}},
	)

	var got string
	assert.NotPanics(t, func() {
		got = fx.combiner.GetCombinedTranscript(context.Background(), testURL)
	})
	assert.Equal(t, "", got)

	res, err := fx.combiner.Combine(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, Done, res.Final)
	assert.Empty(t, res.Transcript)

	failed := map[Stage]bool{}
	for _, o := range res.Outcomes {
		failed[o.Stage] = o.Failed()
	}
	assert.True(t, failed[FetchingSubtitles])
	assert.True(t, failed[Transcribing])
	assert.False(t, failed[Cleanup])
	fx.assertNoArtifacts(t)
}

func TestCombineSpeechOnly(t *testing.T) {
	fx := newFixture(t,
		&fakeFetcher{err: subtitle.ErrUnavailable},
		&fakeAcquirer{},
		&fakeTranscriber{speech: transcribe.Transcript{"First", "Second"}},
	)

	got := fx.combiner.GetCombinedTranscript(context.Background(), testURL)
	assert.Equal(t, "First\nSecond", got)
	assert.NotContains(t, got, SubtitleLabel)
	fx.assertNoArtifacts(t)
}

func TestCombineInvalidURL(t *testing.T) {
	fx := newFixture(t, &fakeFetcher{}, &fakeAcquirer{}, &fakeTranscriber{})

	res, err := fx.combiner.Combine(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, videoref.ErrInvalidReference)
	assert.Equal(t, Failed, res.Final)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Normalizing, res.Outcomes[0].Stage)
	assert.Nil(t, fx.fetcher.langs, "fetcher must not run")

	assert.Equal(t, "", fx.combiner.GetCombinedTranscript(context.Background(), "https://example.com"))
	fx.assertNoArtifacts(t)
}

func TestCombineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fx := newFixture(t,
		&fakeFetcher{track: subtitle.Track{"Only subtitles"}},
		&fakeAcquirer{err: &audio.AcquisitionError{URL: testURL, Stage: "download", Err: context.Canceled}},
		&fakeTranscriber{},
	)

	res, err := fx.combiner.Combine(ctx, testURL)
	require.NoError(t, err)
	assert.Equal(t, SubtitleLabel+"\nOnly subtitles", res.Transcript)
	fx.assertNoArtifacts(t)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		subtitles []string
		speech    []string
		want      string
	}{
		{name: "both empty", want: ""},
		{name: "subtitles only", subtitles: []string{"a", "b"}, want: SubtitleLabel + "\na\nb"},
		{name: "speech only", speech: []string{"x"}, want: "x"},
		{name: "both", subtitles: []string{"a"}, speech: []string{"x", "y"}, want: SubtitleLabel + "\na\nx\ny"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.subtitles, tt.speech)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "fetching_subtitles", FetchingSubtitles.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestStageOutcomeJSON(t *testing.T) {
	data, err := json.Marshal([]StageOutcome{
		{Stage: FetchingSubtitles, Err: subtitle.ErrUnavailable, Duration: 1500 * time.Millisecond},
		{Stage: Cleanup},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"stage":"fetching_subtitles","error":"no subtitles available","duration_ms":1500},
		{"stage":"cleanup","duration_ms":0}
	]`, string(data))
}
