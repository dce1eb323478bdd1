package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, r Registry, id string, want Status) Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := r.Get(id)
		require.True(t, ok, "task %s vanished", id)
		if task.Status == want {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached %s", id, want)
	return Task{}
}

func TestSubmitCompletes(t *testing.T) {
	release := make(chan struct{})
	r := New(func(ctx context.Context, url string) (processor.Job, error) {
		<-release
		return processor.Job{ID: "job-1", URL: url, Title: "Hello"}, nil
	}, 0, logger.Nop())

	task := r.Submit("https://youtu.be/dQw4w9WgXcQ")
	assert.Equal(t, StatusPending, task.Status)
	assert.NotEmpty(t, task.ID)
	assert.Nil(t, task.Job)

	waitFor(t, r, task.ID, StatusRunning)
	close(release)
	done := waitFor(t, r, task.ID, StatusCompleted)

	require.NotNil(t, done.Job)
	assert.Equal(t, "job-1", done.Job.ID)
	assert.Empty(t, done.Error)
	require.NoError(t, r.Close(context.Background()))
}

func TestSubmitFails(t *testing.T) {
	boom := errors.New("no content produced")
	r := New(func(ctx context.Context, url string) (processor.Job, error) {
		return processor.Job{}, boom
	}, 0, logger.Nop())

	task := r.Submit("https://example.com")
	failed := waitFor(t, r, task.ID, StatusFailed)

	assert.ErrorIs(t, failed.Err, boom)
	assert.Equal(t, "no content produced", failed.Error)
	assert.Nil(t, failed.Job)
	require.NoError(t, r.Close(context.Background()))
}

func TestGetUnknown(t *testing.T) {
	r := New(nil, 0, logger.Nop())
	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestFinishedTasksExpire(t *testing.T) {
	r := New(func(ctx context.Context, url string) (processor.Job, error) {
		return processor.Job{ID: url}, nil
	}, time.Minute, logger.Nop()).(*implRegistry)

	clock := time.Now()
	r.now = func() time.Time { return clock }

	old := r.Submit("a")
	waitFor(t, r, old.ID, StatusCompleted)

	clock = clock.Add(2 * time.Minute)
	fresh := r.Submit("b")

	_, ok := r.Get(old.ID)
	assert.False(t, ok, "finished task past retention should be dropped")
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
	require.NoError(t, r.Close(context.Background()))
}

func TestCloseCancelsAfterDeadline(t *testing.T) {
	r := New(func(ctx context.Context, url string) (processor.Job, error) {
		<-ctx.Done()
		return processor.Job{}, ctx.Err()
	}, 0, logger.Nop())

	task := r.Submit("https://example.com/slow")
	waitFor(t, r, task.ID, StatusRunning)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)

	got, ok := r.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status)
	assert.ErrorIs(t, got.Err, context.Canceled)
}
