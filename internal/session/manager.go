package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
)

// Manager owns one evaluation per target key.
// A navigation supersedes the target's previous evaluation: the old one is
// cancelled and anything still in flight for it is discarded.
type Manager struct {
	engine   *checker.Engine
	store    *patterns.Store
	stats    *checker.StatsAccumulator
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time

	generations atomic.Uint64

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a Manager
type Option func(*Manager)

// WithNotifier publishes results, warnings and tracker events to n
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithClock overrides time.Now, used by tests for idle eviction
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager evaluating with engine against the sets in store
func NewManager(engine *checker.Engine, store *patterns.Store, stats *checker.StatsAccumulator, logger *logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		engine:   engine,
		store:    store,
		stats:    stats,
		notifier: nopNotifier{},
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// session is the per-target state. closed is set once the session has been
// removed from the manager; a closed session never accepts new work.
type session struct {
	mu         sync.Mutex
	key        string
	eval       *evaluation
	lastActive time.Time
	closed     bool
}

// evaluation is everything tied to one navigation
type evaluation struct {
	id         string
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc

	url      string
	urlEval  checker.URLEvaluation
	settings checker.Settings
	set      *patterns.Set

	contentThreats  []checker.Threat
	warnings        []checker.Warning
	contentScans    int
	sampler         *checker.CPUSampler
	trackersBlocked int
	completed       bool
	result          checker.AnalysisResult
}

// rebuild recomputes the result from the accumulated findings.
// Callers hold the session lock.
func (e *evaluation) rebuild(key string, now time.Time) checker.AnalysisResult {
	e.result = checker.BuildResult(checker.ResultInput{
		ID:              e.id,
		TargetKey:       key,
		Generation:      e.generation,
		URL:             e.url,
		Domain:          e.urlEval.Domain,
		URLThreats:      e.urlEval.Threats,
		ContentThreats:  e.contentThreats,
		Warnings:        e.warnings,
		TrackersBlocked: e.trackersBlocked,
		Completed:       e.completed,
		Settings:        e.settings,
		Timestamp:       now,
	})
	return e.result
}

// stop cancels everything still running for the evaluation
func (e *evaluation) stop() {
	e.cancel()
	e.sampler.Cancel()
}

// acquire returns the locked session for key, creating it when create is set
func (m *Manager) acquire(key string, create bool) (*session, error) {
	if key == "" {
		return nil, ErrMissingTarget
	}

	for {
		m.mu.Lock()
		s, ok := m.sessions[key]
		if !ok {
			if !create {
				m.mu.Unlock()
				return nil, ErrUnknownTarget
			}
			s = &session{key: key}
			m.sessions[key] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		if !s.closed {
			s.lastActive = m.now()
			return s, nil
		}
		// Lost a race with Close; look the key up again
		s.mu.Unlock()
	}
}

// current returns the locked session and its evaluation for generation.
// generation 0 addresses whatever evaluation is current.
func (m *Manager) current(key string, generation uint64) (*session, *evaluation, error) {
	s, err := m.acquire(key, false)
	if err != nil {
		return nil, nil, err
	}
	if s.eval == nil {
		s.mu.Unlock()
		return nil, nil, ErrUnknownTarget
	}
	if generation != 0 && generation != s.eval.generation {
		s.mu.Unlock()
		return nil, nil, ErrStaleGeneration
	}
	return s, s.eval, nil
}

// Navigate starts a new evaluation for key, superseding the previous one.
// The superseded evaluation is cancelled and never counted in the stats.
func (m *Manager) Navigate(key, rawURL string, settings checker.Settings) (checker.AnalysisResult, error) {
	if key == "" {
		return checker.AnalysisResult{}, ErrMissingTarget
	}

	set := m.store.Current()
	urlEval := m.engine.EvaluateURL(rawURL, settings, set)

	s, err := m.acquire(key, true)
	if err != nil {
		return checker.AnalysisResult{}, err
	}

	superseded := uint64(0)
	if s.eval != nil {
		superseded = s.eval.generation
		s.eval.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	ev := &evaluation{
		id:         uuid.NewString(),
		generation: m.generations.Add(1),
		ctx:        ctx,
		cancel:     cancel,
		url:        rawURL,
		urlEval:    urlEval,
		settings:   settings,
		set:        set,
		sampler:    checker.NewCPUSampler(),
	}
	s.eval = ev
	result := ev.rebuild(key, m.now())
	m.notifier.ResultUpdated(result)
	s.mu.Unlock()

	if urlEval.Err != nil {
		m.logger.Warn("URL checks skipped", "target", key, "url", rawURL, "error", urlEval.Err)
	}
	m.logger.Info("Navigation evaluated",
		"target", key,
		"generation", ev.generation,
		"superseded", superseded,
		"patterns_version", set.Version,
		"score", result.RiskScore,
		"threats", len(result.Threats),
	)
	return result, nil
}

// SubmitContent scans a content descriptor and folds its threats into the
// evaluation. With ScanOnLoad only the first descriptor is scanned; later ones
// return the current result unchanged.
func (m *Manager) SubmitContent(key string, generation uint64, content checker.PageContent) (checker.AnalysisResult, error) {
	s, ev, err := m.current(key, generation)
	if err != nil {
		return checker.AnalysisResult{}, err
	}

	if ev.contentScans > 0 && !ev.settings.ScansEveryUpdate() {
		result := ev.result
		s.mu.Unlock()
		return result, nil
	}
	ev.contentScans++
	if content.URL == "" {
		content.URL = ev.url
	}
	settings, set := ev.settings, ev.set
	s.mu.Unlock()

	// Scan outside the lock; the merge below drops the findings if the
	// evaluation was superseded in the meantime.
	findings := m.engine.ScanContent(content, settings, set)

	s.mu.Lock()
	if s.eval != ev || ev.ctx.Err() != nil {
		s.mu.Unlock()
		return checker.AnalysisResult{}, ErrStaleGeneration
	}
	ev.contentThreats = append(ev.contentThreats, findings.Threats...)
	ev.warnings = append(ev.warnings, findings.Warnings...)
	result := ev.rebuild(key, m.now())

	// Publish before unlocking so a newer navigation's result is always
	// the last one subscribers see for this target.
	for _, w := range findings.Warnings {
		if settings.ShouldNotify(w.Severity) {
			m.notifier.WarningRaised(key, ev.generation, w)
		}
	}
	m.notifier.ResultUpdated(result)
	s.mu.Unlock()
	return result, nil
}

// SubmitCPUSample feeds one sampling window to the evaluation's CPU sampler.
// Sampling only runs with real-time scanning and cryptominer blocking enabled.
func (m *Manager) SubmitCPUSample(key string, generation uint64, iterations int) (checker.AnalysisResult, error) {
	s, ev, err := m.current(key, generation)
	if err != nil {
		return checker.AnalysisResult{}, err
	}

	if !ev.settings.RealTimeProtection || !ev.settings.ScansEveryUpdate() || !ev.settings.BlockCryptominers {
		ev.sampler.Cancel()
		result := ev.result
		s.mu.Unlock()
		return result, nil
	}

	threat, _ := ev.sampler.Observe(iterations)
	if threat == nil {
		result := ev.result
		s.mu.Unlock()
		return result, nil
	}

	ev.contentThreats = append(ev.contentThreats, *threat)
	result := ev.rebuild(key, m.now())
	m.notifier.ResultUpdated(result)
	s.mu.Unlock()

	m.logger.Info("CPU anomaly detected", "target", key, "generation", ev.generation, "iterations", iterations)
	return result, nil
}

// ClassifyRequest decides block/allow for an outbound request of key.
// It uses the target's pattern snapshot when one exists; requests from
// unknown targets are classified against the current set.
func (m *Manager) ClassifyRequest(key, requestURL string, settings checker.Settings) checker.TrackerDecision {
	set := m.store.Current()

	var s *session
	var ev *evaluation
	if key != "" {
		if sess, cur, err := m.current(key, 0); err == nil {
			s, ev = sess, cur
			set = cur.set
			s.mu.Unlock()
		}
	}

	decision := m.engine.ClassifyRequest(requestURL, settings, set)
	if !decision.Block {
		return decision
	}

	m.stats.RecordTrackerBlock()

	if s != nil {
		s.mu.Lock()
		if s.eval == ev && ev.ctx.Err() == nil {
			ev.trackersBlocked++
			m.notifier.TrackerBlocked(key, decision)
			m.notifier.ResultUpdated(ev.rebuild(key, m.now()))
			s.mu.Unlock()
			return decision
		}
		s.mu.Unlock()
	}

	m.notifier.TrackerBlocked(key, decision)
	return decision
}

// Complete finalizes the evaluation and records it in the stats exactly once
func (m *Manager) Complete(key string, generation uint64) (checker.AnalysisResult, error) {
	s, ev, err := m.current(key, generation)
	if err != nil {
		return checker.AnalysisResult{}, err
	}

	result, recorded := m.finalize(s, ev)
	if recorded {
		m.notifier.ResultUpdated(result)
	}
	s.mu.Unlock()

	if recorded {
		m.logger.Info("Evaluation completed",
			"target", key,
			"generation", ev.generation,
			"score", result.RiskScore,
			"secure", result.IsSecure,
		)
	}
	return result, nil
}

// finalize marks ev completed and records stats; callers hold the session lock
func (m *Manager) finalize(s *session, ev *evaluation) (checker.AnalysisResult, bool) {
	if ev.completed {
		return ev.result, false
	}
	ev.completed = true
	result := ev.rebuild(s.key, m.now())
	m.stats.Record(result)
	return result, true
}

// Close finalizes the target's evaluation if needed and forgets the target
func (m *Manager) Close(key string) (checker.AnalysisResult, error) {
	if key == "" {
		return checker.AnalysisResult{}, ErrMissingTarget
	}

	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()
	if !ok {
		return checker.AnalysisResult{}, ErrUnknownTarget
	}

	return m.closeSession(s), nil
}

func (m *Manager) closeSession(s *session) checker.AnalysisResult {
	s.mu.Lock()
	s.closed = true
	ev := s.eval
	if ev == nil {
		s.mu.Unlock()
		return checker.AnalysisResult{}
	}
	ev.stop()
	result, recorded := m.finalize(s, ev)
	if recorded {
		m.notifier.ResultUpdated(result)
	}
	s.mu.Unlock()

	m.logger.Info("Target closed", "target", s.key, "generation", ev.generation)
	return result
}

// Result returns the latest result for key
func (m *Manager) Result(key string) (checker.AnalysisResult, error) {
	s, ev, err := m.current(key, 0)
	if err != nil {
		return checker.AnalysisResult{}, err
	}
	defer s.mu.Unlock()
	return ev.result, nil
}

// Len returns the number of tracked targets
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle closes every target with no activity for longer than ttl and
// returns how many were closed
func (m *Manager) EvictIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var idle []*session
	for key, s := range m.sessions {
		s.mu.Lock()
		if s.lastActive.Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, key)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.closeSession(s)
	}
	return len(idle)
}
