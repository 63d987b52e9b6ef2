package checker

import (
	"sync"
	"testing"
)

func TestStatsAccumulator(t *testing.T) {
	acc := NewStatsAccumulator()

	acc.Record(AnalysisResult{Threats: []Threat{
		{Kind: KindMaliciousDomain},
		{Kind: KindPhishing},
		{Kind: KindSuspiciousURL},
	}})
	acc.Record(AnalysisResult{Threats: []Threat{}})
	acc.Record(AnalysisResult{Threats: []Threat{{Kind: KindPhishingLanguage}}})
	acc.RecordTrackerBlock()
	acc.RecordTrackerBlock()

	want := Stats{
		SitesScanned:    3,
		ThreatsBlocked:  4,
		TrackersBlocked: 2,
		MalwareDetected: 1,
		PhishingBlocked: 1,
	}
	if got := acc.Snapshot(); got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}

	acc.Reset()
	if got := acc.Snapshot(); got != (Stats{}) {
		t.Errorf("after reset = %+v", got)
	}

	acc.Restore(want)
	if got := acc.Snapshot(); got != want {
		t.Errorf("after restore = %+v, want %+v", got, want)
	}
}

func TestStatsAccumulatorConcurrent(t *testing.T) {
	acc := NewStatsAccumulator()
	result := AnalysisResult{Threats: []Threat{{Kind: KindPhishing}}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Record(result)
			acc.RecordTrackerBlock()
		}()
	}
	wg.Wait()

	got := acc.Snapshot()
	if got.SitesScanned != 50 || got.PhishingBlocked != 50 || got.TrackersBlocked != 50 {
		t.Errorf("lost updates: %+v", got)
	}
}
