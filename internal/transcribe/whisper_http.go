package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPOptions configures an OpenAI-compatible /v1/audio/transcriptions endpoint.
type HTTPOptions struct {
	URL      string
	Model    string
	Language string
	Prompt   string
	Timeout  time.Duration
}

// WhisperHTTP calls a remote Whisper server.
type WhisperHTTP struct {
	opts   HTTPOptions
	client *http.Client
}

type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// NewWhisperHTTP creates a new Whisper HTTP client.
func NewWhisperHTTP(opts HTTPOptions) *WhisperHTTP {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Minute
	}
	return &WhisperHTTP{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Name implements Model.
func (wc *WhisperHTTP) Name() string {
	if wc.opts.Model != "" {
		return "whisper-http/" + wc.opts.Model
	}
	return "whisper-http"
}

// Transcribe implements Model.
func (wc *WhisperHTTP) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return Result{}, fmt.Errorf("copy audio data: %w", err)
	}

	if wc.opts.Model != "" {
		w.WriteField("model", wc.opts.Model)
	}
	// omitted language means auto-detect
	if wc.opts.Language != "" && wc.opts.Language != "auto" {
		w.WriteField("language", wc.opts.Language)
	}
	if wc.opts.Prompt != "" {
		w.WriteField("prompt", wc.opts.Prompt)
	}
	w.WriteField("response_format", "verbose_json")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.opts.URL, &buf)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := wc.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("whisper API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	return Result{Text: result.Text, Language: result.Language, Duration: result.Duration}, nil
}
