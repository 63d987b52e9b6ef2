package checker

import (
	"fmt"
	"sync"
	"time"
)

// CPU sampling bounds
const (
	CPUSampleWindow        = time.Second
	MaxCPUSampleWindows    = 10
	MinIterationsPerWindow = 50
)

// SamplerState is the CPU sampler lifecycle state
type SamplerState string

const (
	SamplerSampling     SamplerState = "sampling"
	SamplerAnomalyFound SamplerState = "anomaly_found"
	SamplerCapReached   SamplerState = "cap_reached"
	SamplerCancelled    SamplerState = "cancelled"
)

// CPUSampler detects main-thread starvation from per-window iteration counts.
// The host ticks it once per CPUSampleWindow; the sampler never schedules itself.
type CPUSampler struct {
	mu      sync.Mutex
	state   SamplerState
	windows int
}

// NewCPUSampler returns a sampler in the sampling state
func NewCPUSampler() *CPUSampler {
	return &CPUSampler{state: SamplerSampling}
}

// Observe records one window's iteration count.
// It returns a high_cpu_usage threat on the first starved window; done is
// true once the sampler has reached a terminal state.
func (s *CPUSampler) Observe(iterations int) (threat *Threat, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SamplerSampling {
		return nil, true
	}

	s.windows++
	if iterations < MinIterationsPerWindow {
		s.state = SamplerAnomalyFound
		t := newContentThreat(
			KindHighCPUUsage,
			SeverityMedium,
			fmt.Sprintf("High CPU usage detected: %d iterations in %s window, possible cryptomining", iterations, CPUSampleWindow),
		)
		return &t, true
	}

	if s.windows >= MaxCPUSampleWindows {
		s.state = SamplerCapReached
		return nil, true
	}
	return nil, false
}

// Cancel stops sampling; later observations are ignored
func (s *CPUSampler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SamplerSampling {
		s.state = SamplerCancelled
	}
}

// State returns the current state
func (s *CPUSampler) State() SamplerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Windows returns how many windows have been observed
func (s *CPUSampler) Windows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows
}
