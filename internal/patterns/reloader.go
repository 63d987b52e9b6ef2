package patterns

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olegrjumin/threatlens/internal/logging"
)

// Reloader watches a pattern file and swaps a new set into the store whenever
// the file changes. A file that fails to load leaves the current set active.
type Reloader struct {
	path     string
	interval time.Duration
	store    *Store
	logger   *logging.Logger

	mu      sync.Mutex
	modTime time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool
}

// NewReloader creates a reloader for path polling every interval
func NewReloader(path string, interval time.Duration, store *Store, logger *logging.Logger) *Reloader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reloader{
		path:     path,
		interval: interval,
		store:    store,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins polling in the background
func (r *Reloader) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := r.ReloadIfChanged(); err != nil {
					r.logger.Error("Pattern reload failed", "path", r.path, "error", err)
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Stop stops polling and waits for the loop to exit
func (r *Reloader) Stop() {
	r.cancel()
	if r.started.Load() {
		<-r.done
	}
}

// Path returns the watched pattern file
func (r *Reloader) Path() string {
	return r.path
}

// ReloadIfChanged reloads the file when its modification time moved.
// It reports whether a new set was swapped in.
func (r *Reloader) ReloadIfChanged() (bool, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	unchanged := info.ModTime().Equal(r.modTime)
	r.mu.Unlock()
	if unchanged {
		return false, nil
	}

	if err := r.Reload(); err != nil {
		return false, err
	}
	return true, nil
}

// Reload unconditionally loads the file and swaps it in
func (r *Reloader) Reload() error {
	info, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	set, err := Load(r.path)
	if err != nil {
		return err
	}

	previous := r.store.Swap(set)

	r.mu.Lock()
	r.modTime = info.ModTime()
	r.mu.Unlock()

	r.logger.Info("Patterns reloaded",
		"path", r.path,
		"version", r.store.Version(),
		"previous_version", previous.Version,
	)
	return nil
}
