package session

import (
	"context"
	"time"

	"github.com/olegrjumin/threatlens/internal/logging"
)

// Janitor periodically closes targets the host stopped talking about,
// e.g. tabs whose close event never arrived
type Janitor struct {
	manager  *Manager
	ttl      time.Duration
	interval time.Duration
	logger   *logging.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewJanitor creates a janitor evicting targets idle for longer than ttl
func NewJanitor(manager *Manager, ttl, interval time.Duration, logger *logging.Logger) *Janitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Janitor{
		manager:  manager,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop. A non-positive ttl or interval disables eviction.
func (j *Janitor) Start() {
	if j.interval <= 0 || j.ttl <= 0 {
		j.logger.Warn("Idle eviction disabled", "ttl", j.ttl, "interval", j.interval)
		close(j.done)
		return
	}

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Sweep()
			case <-j.ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop and waits for it to exit. Start must have been called.
func (j *Janitor) Stop() {
	j.cancel()
	<-j.done
}

// Sweep runs one eviction pass
func (j *Janitor) Sweep() int {
	evicted := j.manager.EvictIdle(j.ttl)
	if evicted > 0 {
		j.logger.Info("Idle targets evicted", "count", evicted, "remaining", j.manager.Len())
	}
	return evicted
}
