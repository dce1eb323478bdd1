package transcribe

import (
	"context"
	"errors"
	"sync"
)

// Lazy loads a Model on first use and keeps it for as long as the Lazy lives.
// A failed load is not remembered; the next call tries again.
type Lazy struct {
	load  Loader
	mu    sync.Mutex
	model Model
}

// NewLazy wraps load.
func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

// Get returns the cached model, loading it if needed.
func (l *Lazy) Get(ctx context.Context) (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}
	if l.load == nil {
		return nil, errors.New("no model loader configured")
	}
	m, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.model = m
	return m, nil
}

// Loaded reports whether a model is cached.
func (l *Lazy) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model != nil
}
