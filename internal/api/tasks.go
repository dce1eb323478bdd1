package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nguyentantai21042004/transcript-flow/internal/tasks"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
)

type SubmitResponse struct {
	TaskID string       `json:"task_id"`
	Status tasks.Status `json:"status"`
}

// submitTask queues a digest job and returns at once.
func (h *handlers) submitTask(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}
	task := h.tasks.Submit(url)
	w.Header().Set("Location", "/api/v1/tasks/"+task.ID)
	WriteJSON(w, http.StatusAccepted, SubmitResponse{TaskID: task.ID, Status: task.Status})
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.tasks.Get(chi.URLParam(r, "id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "task not found")
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// getTaskResult returns the digest of a completed task: 202 while it runs and
// the job's own error status once it failed.
func (h *handlers) getTaskResult(w http.ResponseWriter, r *http.Request) {
	task, ok := h.tasks.Get(chi.URLParam(r, "id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "task not found")
		return
	}

	switch task.Status {
	case tasks.StatusCompleted:
		WriteJSON(w, http.StatusOK, DigestResponse{Job: *task.Job, Transcript: task.Job.Transcript})
	case tasks.StatusFailed:
		writeJobError(w, task.Err)
	default:
		WriteJSON(w, http.StatusAccepted, SubmitResponse{TaskID: task.ID, Status: task.Status})
	}
}

// createThumbnail redirects to a remote preview image or serves stored bytes.
func (h *handlers) createThumbnail(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}

	thumb, err := h.thumbnails.Generate(r.Context(), url)
	if err != nil {
		writeThumbnailError(w, err)
		return
	}

	switch thumb.Kind {
	case thumbnail.KindRedirect:
		http.Redirect(w, r, thumb.URL, http.StatusTemporaryRedirect)
	default:
		w.Header().Set("Content-Type", thumb.ContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(thumb.Data)
	}
}

func writeThumbnailError(w http.ResponseWriter, err error) {
	if errors.Is(err, thumbnail.ErrNotFound) {
		WriteErrorDetail(w, http.StatusNotFound, "no thumbnail", err.Error())
		return
	}
	writeJobError(w, err)
}
