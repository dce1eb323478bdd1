package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/extract"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/nguyentantai21042004/transcript-flow/internal/tasks"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveJobs    int    `json:"active_jobs"`
	JobSlots      int    `json:"job_slots"`
}

type TranscriptResponse struct {
	VideoID    string                  `json:"video_id"`
	URL        string                  `json:"url"`
	Transcript string                  `json:"transcript"`
	Stages     []combiner.StageOutcome `json:"stages"`
}

type DigestResponse struct {
	processor.Job
	Transcript string `json:"transcript"`
}

type handlers struct {
	combiner   combiner.Combiner
	processor  processor.Processor
	tasks      tasks.Registry
	thumbnails thumbnail.Generator
	version    string
	startTime  time.Time
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
	if h.processor != nil {
		resp.ActiveJobs = h.processor.ActiveJobs()
		resp.JobSlots = h.processor.Capacity()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// createTranscript builds a combined transcript synchronously.
func (h *handlers) createTranscript(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}

	res, err := h.combiner.Combine(r.Context(), url)
	if err != nil {
		if errors.Is(err, videoref.ErrInvalidReference) {
			WriteErrorDetail(w, http.StatusBadRequest, "invalid video url", err.Error())
			return
		}
		WriteErrorDetail(w, http.StatusInternalServerError, "transcript failed", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, TranscriptResponse{
		VideoID:    res.Reference.VideoID,
		URL:        res.Reference.PlatformURL,
		Transcript: res.Transcript,
		Stages:     res.Outcomes,
	})
}

// createDigest runs a full job: transcript or page text, summary and storage.
func (h *handlers) createDigest(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}

	job, err := h.processor.Process(r.Context(), url)
	if err != nil {
		writeJobError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, DigestResponse{Job: job, Transcript: job.Transcript})
}

// writeJobError maps a processor error to its HTTP status.
func writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, videoref.ErrInvalidReference):
		WriteErrorDetail(w, http.StatusBadRequest, "invalid url", err.Error())
	case errors.Is(err, processor.ErrNoContent), errors.Is(err, extract.ErrUnsupportedContent):
		WriteErrorDetail(w, http.StatusUnprocessableEntity, "no content", err.Error())
	default:
		WriteErrorDetail(w, http.StatusBadGateway, "job failed", err.Error())
	}
}
