package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

// Workspace is a scratch directory owned by a single transcript invocation.
// Artifact names are fixed only inside it, so concurrent invocations never collide.
type Workspace struct {
	dir    string
	logger logger.Logger
	once   sync.Once
}

// NewWorkspace creates a fresh directory under root.
func NewWorkspace(root string, log logger.Logger) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "transcript-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, logger: log}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Release removes the workspace and everything in it. Safe to call more than once;
// removal failures are logged, never returned.
func (w *Workspace) Release(ctx context.Context) {
	if w == nil {
		return
	}
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.logger.Warn(ctx, "Failed to remove workspace %s: %v", w.dir, err)
			return
		}
		w.logger.Debug(ctx, "Removed workspace: %s", w.dir)
	})
}
