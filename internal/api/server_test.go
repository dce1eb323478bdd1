package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/tasks"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCombiner struct{}

func (fakeCombiner) Combine(ctx context.Context, rawURL string) (combiner.Result, error) {
	ref, err := videoref.Normalize(rawURL)
	if err != nil {
		return combiner.Result{Final: combiner.Failed}, err
	}
	return combiner.Result{
		Reference:  ref,
		Transcript: combiner.SubtitleLabel + "\nHello world\nGoodbye",
		Outcomes: []combiner.StageOutcome{
			{Stage: combiner.Normalizing},
			{Stage: combiner.FetchingSubtitles, Err: subtitle.ErrUnavailable},
		},
		Final: combiner.Done,
	}, nil
}

func (f fakeCombiner) GetCombinedTranscript(ctx context.Context, rawURL string) string {
	res, _ := f.Combine(ctx, rawURL)
	return res.Transcript
}

type fakeProcessor struct {
	err error
}

func (f fakeProcessor) Process(ctx context.Context, url string) (processor.Job, error) {
	if f.err != nil {
		return processor.Job{}, f.err
	}
	return processor.Job{ID: "job-1", URL: url, Kind: processor.KindPage, Transcript: "text",
		Outputs: map[string]string{"transcript.txt": "/out/job-1/transcript.txt"}}, nil
}

func (fakeProcessor) ProcessFile(ctx context.Context, path string) error { return nil }
func (fakeProcessor) ActiveJobs() int                                    { return 1 }
func (fakeProcessor) Capacity() int                                      { return 2 }

type fakeThumbnails struct {
	thumb thumbnail.Thumbnail
	err   error
}

func (f fakeThumbnails) Generate(ctx context.Context, rawURL string) (thumbnail.Thumbnail, error) {
	return f.thumb, f.err
}

func newTestRouter(token string, proc processor.Processor) http.Handler {
	return NewRouter(token, Deps{Combiner: fakeCombiner{}, Processor: proc}, "test", time.Now(), logger.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter("secret", fakeProcessor{}), http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 2, resp.JobSlots)
}

func TestCreateTranscript(t *testing.T) {
	rec := do(t, newTestRouter("", fakeProcessor{}), http.MethodPost, "/api/v1/transcripts",
		`{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		VideoID    string `json:"video_id"`
		Transcript string `json:"transcript"`
		Stages     []struct {
			Stage string `json:"stage"`
			Error string `json:"error"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dQw4w9WgXcQ", resp.VideoID)
	assert.True(t, strings.HasPrefix(resp.Transcript, combiner.SubtitleLabel))
	require.Len(t, resp.Stages, 2)
	assert.Equal(t, "fetching_subtitles", resp.Stages[1].Stage)
	assert.Equal(t, "no subtitles available", resp.Stages[1].Error)
}

func TestCreateTranscriptBadRequests(t *testing.T) {
	h := newTestRouter("", fakeProcessor{})

	tests := []struct {
		name string
		body string
	}{
		{name: "not a video", body: `{"url":"https://example.com"}`},
		{name: "missing url", body: `{}`},
		{name: "malformed", body: `{"url":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/transcripts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBearerAuth(t *testing.T) {
	h := newTestRouter("secret", fakeProcessor{})
	body := `{"url":"https://youtu.be/dQw4w9WgXcQ"}`

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/transcripts", body).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodPost, "/api/v1/transcripts", body, "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK,
		do(t, h, http.MethodPost, "/api/v1/transcripts", body, "Authorization", "Bearer secret").Code)
}

func TestCreateDigest(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "invalid", err: fmt.Errorf("%w: %q", videoref.ErrInvalidReference, "x"), want: http.StatusBadRequest},
		{name: "empty", err: processor.ErrNoContent, want: http.StatusUnprocessableEntity},
		{name: "upstream", err: errors.New("status 500"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter("", fakeProcessor{err: tt.err}), http.MethodPost, "/api/v1/digests",
				`{"url":"https://example.com/post"}`)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "job-1", resp["id"])
				assert.Equal(t, "text", resp["transcript"])
			}
		})
	}
}

func pollResult(t *testing.T, h http.Handler, taskID string) *httptest.ResponseRecorder {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, h, http.MethodGet, "/api/v1/tasks/"+taskID+"/result", "")
		if rec.Code != http.StatusAccepted || time.Now().After(deadline) {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTasks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "completed", want: http.StatusOK},
		{name: "empty", err: processor.ErrNoContent, want: http.StatusUnprocessableEntity},
		{name: "upstream", err: errors.New("status 500"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := fakeProcessor{err: tt.err}
			reg := tasks.New(proc.Process, 0, logger.Nop())
			t.Cleanup(func() { reg.Close(context.Background()) })
			h := NewRouter("", Deps{Combiner: fakeCombiner{}, Processor: proc, Tasks: reg}, "test", time.Now(), logger.Nop())

			rec := do(t, h, http.MethodPost, "/api/v1/tasks", `{"url":"https://example.com/post"}`)
			require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
			var submitted SubmitResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
			require.NotEmpty(t, submitted.TaskID)
			assert.Equal(t, "/api/v1/tasks/"+submitted.TaskID, rec.Header().Get("Location"))

			rec = pollResult(t, h, submitted.TaskID)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			rec = do(t, h, http.MethodGet, "/api/v1/tasks/"+submitted.TaskID, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var status map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, submitted.TaskID, status["task_id"])
			if tt.err == nil {
				assert.Equal(t, "completed", status["status"])
				assert.NotNil(t, status["result"])
			} else {
				assert.Equal(t, "failed", status["status"])
				assert.Nil(t, status["result"])
				assert.Equal(t, tt.err.Error(), status["error"])
			}
		})
	}
}

func TestTaskNotFound(t *testing.T) {
	reg := tasks.New(fakeProcessor{}.Process, 0, logger.Nop())
	h := NewRouter("", Deps{Combiner: fakeCombiner{}, Processor: fakeProcessor{}, Tasks: reg}, "test", time.Now(), logger.Nop())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/tasks/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/tasks/nope/result", "").Code)
}

func TestCreateThumbnail(t *testing.T) {
	newRouter := func(g thumbnail.Generator) http.Handler {
		return NewRouter("", Deps{Combiner: fakeCombiner{}, Processor: fakeProcessor{}, Thumbnails: g}, "test", time.Now(), logger.Nop())
	}
	body := `{"url":"https://youtu.be/dQw4w9WgXcQ"}`

	rec := do(t, newRouter(fakeThumbnails{thumb: thumbnail.ForVideo("dQw4w9WgXcQ")}), http.MethodPost, "/api/v1/thumbnails", body)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/0.jpg", rec.Header().Get("Location"))

	img := thumbnail.Thumbnail{Kind: thumbnail.KindImage, Data: []byte("image_bytes"), ContentType: "image/png"}
	rec = do(t, newRouter(fakeThumbnails{thumb: img}), http.MethodPost, "/api/v1/thumbnails", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "image_bytes", rec.Body.String())

	rec = do(t, newRouter(fakeThumbnails{err: thumbnail.ErrNotFound}), http.MethodPost, "/api/v1/thumbnails", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter("secret", fakeProcessor{})
	do(t, h, http.MethodGet, "/api/v1/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transcript_flow_http_requests_total")
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
