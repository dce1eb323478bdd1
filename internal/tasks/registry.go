package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// DefaultRetention is how long finished tasks stay queryable.
const DefaultRetention = time.Hour

type implRegistry struct {
	run       RunFunc
	retention time.Duration
	logger    logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	tasks map[string]*Task
	now   func() time.Time
}

// New creates a Registry that runs every task with run. Finished tasks are
// forgotten after retention; 0 means DefaultRetention.
func New(run RunFunc, retention time.Duration, log logger.Logger) Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &implRegistry{
		run:       run,
		retention: retention,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
		tasks:     make(map[string]*Task),
		now:       time.Now,
	}
}

func (r *implRegistry) Submit(url string) Task {
	now := r.now()
	task := &Task{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.sweep(now)
	r.tasks[task.ID] = task
	snapshot := *task
	r.mu.Unlock()

	ctx := logger.WithFields(r.ctx, r.logger, "task_id", task.ID)
	r.logger.Info(ctx, "Task submitted for %s", url)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx, task.ID, url)
	}()
	return snapshot
}

func (r *implRegistry) execute(ctx context.Context, id, url string) {
	r.update(id, func(t *Task) { t.Status = StatusRunning })

	job, err := r.run(ctx, url)
	if err != nil {
		r.logger.Warn(ctx, "Task failed: %v", err)
		r.update(id, func(t *Task) {
			t.Status = StatusFailed
			t.Err = err
			t.Error = err.Error()
		})
		return
	}
	r.logger.Info(ctx, "Task completed: job %s", job.ID)
	r.update(id, func(t *Task) {
		t.Status = StatusCompleted
		t.Job = &job
	})
}

func (r *implRegistry) update(id string, fn func(*Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		fn(t)
		t.UpdatedAt = r.now()
	}
}

func (r *implRegistry) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// sweep drops finished tasks older than the retention. Caller holds mu.
func (r *implRegistry) sweep(now time.Time) {
	for id, t := range r.tasks {
		if t.Status.Finished() && now.Sub(t.UpdatedAt) > r.retention {
			delete(r.tasks, id)
		}
	}
}

func (r *implRegistry) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "Canceling unfinished tasks")
		r.cancel()
		<-done
		return ctx.Err()
	}
}
