// Package tasks runs jobs in the background and keeps their status for polling.
package tasks

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
)

// Status represents the lifecycle of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Finished reports whether the task will not change any more.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is a snapshot of one submitted URL.
type Task struct {
	ID        string         `json:"task_id"`
	URL       string         `json:"url"`
	Status    Status         `json:"status"`
	Job       *processor.Job `json:"result"`
	Error     string         `json:"error,omitempty"`
	Err       error          `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// RunFunc processes one URL.
type RunFunc func(ctx context.Context, url string) (processor.Job, error)

// Registry accepts URLs and tracks the resulting jobs by task id.
type Registry interface {
	// Submit starts processing url in the background and returns the pending task.
	Submit(url string) Task
	// Get returns a snapshot of the task with id.
	Get(id string) (Task, bool)
	// Close waits for running tasks until ctx ends, then cancels them.
	Close(ctx context.Context) error
}
