package subtitle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.0" dur="1.5">Hello world.</text>
<text start="1.5" dur="2.0">It&amp;#39;s a
test.</text>
<text start="3.5" dur="1.0">   </text>
<text start="4.5" dur="1.0">Goodbye.</text>
</transcript>`

func watchPage(tracksJSON string) string {
	return `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},` +
		`"videoDetails":{"title":"a \"quoted\" {brace}"},` + tracksJSON + `};var meta = {};</script></html>`
}

func captionsJSON(baseURL string, tracks ...string) string {
	parts := make([]string, 0, len(tracks))
	for _, t := range tracks {
		lang, kind, _ := strings.Cut(t, ":")
		parts = append(parts, fmt.Sprintf(`{"baseUrl":"%s/timedtext?lang=%s&kind=%s","languageCode":"%s","kind":"%s"}`,
			baseURL, lang, kind, lang, kind))
	}
	return `"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` + strings.Join(parts, ",") + `]}}`
}

type fakeSite struct {
	tracks      []string
	noCaptions  bool
	watchFails  int32
	watchStatus int
	watchCalls  atomic.Int32
	timedLang   atomic.Value
}

func (s *fakeSite) handler(base func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		n := s.watchCalls.Add(1)
		if n <= s.watchFails {
			w.WriteHeader(s.watchStatus)
			return
		}
		if s.noCaptions {
			fmt.Fprint(w, watchPage(`"captions":null`))
			return
		}
		fmt.Fprint(w, watchPage(captionsJSON(base(), s.tracks...)))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		s.timedLang.Store(r.URL.Query().Get("lang") + ":" + r.URL.Query().Get("kind"))
		fmt.Fprint(w, sampleTimedText)
	})
	return mux
}

func newTestFetcher(t *testing.T, site *fakeSite, retries int) (*implFetcher, *httptest.Server) {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(site.handler(func() string { return srv.URL }))
	t.Cleanup(srv.Close)

	f := New(Options{BaseURL: srv.URL, MaxRetries: &retries}, logger.Nop()).(*implFetcher)
	f.retry.InitialWait = time.Millisecond
	f.retry.MaxWait = 5 * time.Millisecond
	return f, srv
}

func TestFetch(t *testing.T) {
	site := &fakeSite{tracks: []string{"en:", "ko:asr"}}
	f, _ := newTestFetcher(t, site, 0)

	track, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"ko", "en"})
	require.NoError(t, err)
	assert.Equal(t, Track{"Hello world.", "It's a test.", "Goodbye."}, track)
	assert.Equal(t, "ko:asr", site.timedLang.Load())
}

func TestFetchPrefersManualTrack(t *testing.T) {
	site := &fakeSite{tracks: []string{"ko:asr", "ko:", "en:"}}
	f, _ := newTestFetcher(t, site, 0)

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"ko", "en"})
	require.NoError(t, err)
	assert.Equal(t, "ko:", site.timedLang.Load())
}

func TestFetchFallsBackToSecondLanguage(t *testing.T) {
	site := &fakeSite{tracks: []string{"ja:", "en:asr"}}
	f, _ := newTestFetcher(t, site, 0)

	track, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"ko", "en"})
	require.NoError(t, err)
	assert.Len(t, track, 3)
	assert.Equal(t, "en:asr", site.timedLang.Load())
}

func TestFetchUnavailable(t *testing.T) {
	tests := []struct {
		name string
		site *fakeSite
	}{
		{name: "no captions", site: &fakeSite{noCaptions: true}},
		{name: "language mismatch", site: &fakeSite{tracks: []string{"ja:", "fr:asr"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestFetcher(t, tt.site, 0)
			_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"ko", "en"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)

			var fetchErr *FetchError
			assert.False(t, errors.As(err, &fetchErr))
		})
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	site := &fakeSite{tracks: []string{"en:"}, watchFails: 2, watchStatus: http.StatusServiceUnavailable}
	f, _ := newTestFetcher(t, site, 2)

	track, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	require.NoError(t, err)
	assert.Len(t, track, 3)
	assert.Equal(t, int32(3), site.watchCalls.Load())
}

func TestFetchExhaustsRetries(t *testing.T) {
	site := &fakeSite{tracks: []string{"en:"}, watchFails: 10, watchStatus: http.StatusBadGateway}
	f, _ := newTestFetcher(t, site, 2)

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "dQw4w9WgXcQ", fetchErr.VideoID)
	assert.True(t, fetchErr.Retryable())
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(3), site.watchCalls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	site := &fakeSite{tracks: []string{"en:"}, watchFails: 10, watchStatus: http.StatusNotFound}
	f, _ := newTestFetcher(t, site, 2)

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, int32(1), site.watchCalls.Load())
}

func TestNewRetryDefaults(t *testing.T) {
	f := New(Options{}, logger.Nop()).(*implFetcher)
	assert.Equal(t, defaultRetryConfig.MaxRetries, f.retry.MaxRetries)

	zero := 0
	f = New(Options{MaxRetries: &zero}, logger.Nop()).(*implFetcher)
	assert.Equal(t, 0, f.retry.MaxRetries)
}

func TestFetchWithoutRetries(t *testing.T) {
	site := &fakeSite{tracks: []string{"en:"}, watchFails: 1, watchStatus: http.StatusServiceUnavailable}
	f, _ := newTestFetcher(t, site, 0)

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, int32(1), site.watchCalls.Load())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: `{"a":1};rest`, want: `{"a":1}`},
		{name: "nested", in: `{"a":{"b":{}}} trailing`, want: `{"a":{"b":{}}}`},
		{name: "braces in string", in: `{"a":"}{\"}"}x`, want: `{"a":"}{\"}"}`},
		{name: "unterminated", in: `{"a":{`, want: ""},
		{name: "not an object", in: `[1,2]`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&statusError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, isRetryable(fmt.Errorf("wrapped: %w", &statusError{StatusCode: http.StatusGatewayTimeout})))
	assert.False(t, isRetryable(&statusError{StatusCode: http.StatusForbidden}))
	assert.False(t, isRetryable(errors.New("boom")))
}
