package checker

import "testing"

func TestCPUSamplerFindsAnomaly(t *testing.T) {
	sampler := NewCPUSampler()

	for i := 0; i < 3; i++ {
		if threat, done := sampler.Observe(500); threat != nil || done {
			t.Fatalf("window %d: healthy window produced threat=%v done=%v", i, threat, done)
		}
	}

	threat, done := sampler.Observe(12)
	if threat == nil || !done {
		t.Fatalf("starved window should produce a threat and finish, got threat=%v done=%v", threat, done)
	}
	if threat.Kind != KindHighCPUUsage || threat.Severity != SeverityMedium {
		t.Errorf("unexpected threat: %+v", threat)
	}
	if sampler.State() != SamplerAnomalyFound {
		t.Errorf("state = %s, want %s", sampler.State(), SamplerAnomalyFound)
	}

	// Terminal: no second threat
	if threat, done := sampler.Observe(0); threat != nil || !done {
		t.Errorf("terminal sampler should ignore windows, got threat=%v done=%v", threat, done)
	}
	if sampler.Windows() != 4 {
		t.Errorf("windows = %d, want 4", sampler.Windows())
	}
}

func TestCPUSamplerStopsAtCap(t *testing.T) {
	sampler := NewCPUSampler()

	for i := 1; i <= MaxCPUSampleWindows; i++ {
		threat, done := sampler.Observe(MinIterationsPerWindow)
		if threat != nil {
			t.Fatalf("window %d: unexpected threat", i)
		}
		if done != (i == MaxCPUSampleWindows) {
			t.Fatalf("window %d: done = %v", i, done)
		}
	}

	if sampler.State() != SamplerCapReached {
		t.Errorf("state = %s, want %s", sampler.State(), SamplerCapReached)
	}
	if threat, _ := sampler.Observe(0); threat != nil {
		t.Error("sampler past its cap must stay silent")
	}
	if sampler.Windows() != MaxCPUSampleWindows {
		t.Errorf("windows = %d, want %d", sampler.Windows(), MaxCPUSampleWindows)
	}
}

func TestCPUSamplerCancel(t *testing.T) {
	sampler := NewCPUSampler()
	sampler.Observe(100)
	sampler.Cancel()

	if threat, done := sampler.Observe(0); threat != nil || !done {
		t.Fatalf("cancelled sampler produced threat=%v done=%v", threat, done)
	}
	if sampler.State() != SamplerCancelled {
		t.Errorf("state = %s, want %s", sampler.State(), SamplerCancelled)
	}

	// Cancel after a terminal state keeps the original outcome
	finished := NewCPUSampler()
	finished.Observe(1)
	finished.Cancel()
	if finished.State() != SamplerAnomalyFound {
		t.Errorf("state = %s, want %s", finished.State(), SamplerAnomalyFound)
	}
}
