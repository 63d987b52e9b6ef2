package checker

import "sync"

// Stats is a snapshot of the cumulative protection counters
type Stats struct {
	SitesScanned    int64 `json:"sites_scanned"`
	ThreatsBlocked  int64 `json:"threats_blocked"`
	TrackersBlocked int64 `json:"trackers_blocked"`
	MalwareDetected int64 `json:"malware_detected"`
	PhishingBlocked int64 `json:"phishing_blocked"`
}

// StatsAccumulator maintains Stats across evaluations.
// Counters only grow until Reset.
type StatsAccumulator struct {
	mu    sync.Mutex
	stats Stats
}

// NewStatsAccumulator creates an accumulator starting from zero
func NewStatsAccumulator() *StatsAccumulator {
	return &StatsAccumulator{}
}

// Record counts one completed evaluation
func (a *StatsAccumulator) Record(result AnalysisResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.SitesScanned++
	a.stats.ThreatsBlocked += int64(len(result.Threats))
	if result.HasKind(KindMaliciousDomain) {
		a.stats.MalwareDetected++
	}
	if result.HasKind(KindPhishing) {
		a.stats.PhishingBlocked++
	}
}

// RecordTrackerBlock counts one blocked tracker request
func (a *StatsAccumulator) RecordTrackerBlock() {
	a.mu.Lock()
	a.stats.TrackersBlocked++
	a.mu.Unlock()
}

// Snapshot returns a copy of the counters
func (a *StatsAccumulator) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset zeroes every counter
func (a *StatsAccumulator) Reset() {
	a.mu.Lock()
	a.stats = Stats{}
	a.mu.Unlock()
}

// Restore replaces the counters, used when the host reloads persisted stats
func (a *StatsAccumulator) Restore(s Stats) {
	a.mu.Lock()
	a.stats = s
	a.mu.Unlock()
}
