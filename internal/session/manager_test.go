package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
)

// recorder is a Notifier that keeps everything it receives
type recorder struct {
	mu       sync.Mutex
	results  []checker.AnalysisResult
	warnings []checker.Warning
	trackers []checker.TrackerDecision
}

func (r *recorder) ResultUpdated(result checker.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) WarningRaised(_ string, _ uint64, w checker.Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w)
}

func (r *recorder) TrackerBlocked(_ string, d checker.TrackerDecision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers = append(r.trackers, d)
}

func newTestManager(opts ...Option) (*Manager, *checker.StatsAccumulator, *patterns.Store) {
	logger := logging.Discard()
	store := patterns.NewStore(nil)
	stats := checker.NewStatsAccumulator()
	return NewManager(checker.New(logger), store, stats, logger, opts...), stats, store
}

func TestNavigateProducesResult(t *testing.T) {
	rec := &recorder{}
	m, _, _ := newTestManager(WithNotifier(rec))

	result, err := m.Navigate("tab-1", "https://secure-login-verify.tk/confirm", checker.DefaultSettings())
	if err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if result.RiskScore != 70 || result.IsSecure {
		t.Errorf("unexpected result: score=%d secure=%v", result.RiskScore, result.IsSecure)
	}
	if result.TargetKey != "tab-1" || result.Generation == 0 || result.ID == "" {
		t.Errorf("result not tied to its evaluation: %+v", result)
	}
	if len(rec.results) != 1 {
		t.Errorf("expected one published result, got %d", len(rec.results))
	}

	got, err := m.Result("tab-1")
	if err != nil || got.ID != result.ID {
		t.Errorf("Result() = %+v, %v", got, err)
	}
}

func TestContentIsAdditive(t *testing.T) {
	m, _, _ := newTestManager()

	nav, _ := m.Navigate("tab-1", "https://shop.example.com/", checker.DefaultSettings())

	first, err := m.SubmitContent("tab-1", nav.Generation, checker.PageContent{Text: "verify your account"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := m.SubmitContent("tab-1", 0, checker.PageContent{
		Scripts: []checker.Script{{Inline: "eval(x)"}},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if first.RiskScore != 5 || second.RiskScore != 20 {
		t.Errorf("scores = %d then %d, want 5 then 20", first.RiskScore, second.RiskScore)
	}
	if second.ID != nav.ID {
		t.Error("content updates must keep the evaluation ID")
	}
}

func TestScanOnLoadAcceptsFirstDescriptorOnly(t *testing.T) {
	m, _, _ := newTestManager()
	settings := checker.DefaultSettings()
	settings.ScanFrequency = checker.ScanOnLoad

	m.Navigate("tab-1", "https://shop.example.com/", settings)
	m.SubmitContent("tab-1", 0, checker.PageContent{Text: "security alert"})
	result, err := m.SubmitContent("tab-1", 0, checker.PageContent{Text: "verify your account"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(result.Threats) != 1 {
		t.Errorf("expected only the first descriptor to be scanned, got %+v", result.Threats)
	}

	sampled, _ := m.SubmitCPUSample("tab-1", 0, 1)
	if len(sampled.Threats) != 1 {
		t.Errorf("CPU sampling must be off for onload scanning, got %+v", sampled.Threats)
	}
}

func TestStaleGenerationRejected(t *testing.T) {
	m, stats, _ := newTestManager()

	old, _ := m.Navigate("tab-1", "https://first.example.com/", checker.DefaultSettings())
	current, _ := m.Navigate("tab-1", "https://second.example.com/", checker.DefaultSettings())

	if current.Generation <= old.Generation {
		t.Fatalf("generations must increase: %d then %d", old.Generation, current.Generation)
	}

	if _, err := m.SubmitContent("tab-1", old.Generation, checker.PageContent{Text: "security alert"}); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("SubmitContent err = %v, want ErrStaleGeneration", err)
	}
	if _, err := m.SubmitCPUSample("tab-1", old.Generation, 0); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("SubmitCPUSample err = %v, want ErrStaleGeneration", err)
	}
	if _, err := m.Complete("tab-1", old.Generation); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("Complete err = %v, want ErrStaleGeneration", err)
	}

	result, _ := m.Result("tab-1")
	if result.Generation != current.Generation || result.RiskScore != 0 {
		t.Errorf("stale submissions leaked into the current result: %+v", result)
	}
	if got := stats.Snapshot().SitesScanned; got != 0 {
		t.Errorf("superseded evaluations must not be recorded, sites_scanned = %d", got)
	}
}

func TestCompleteRecordsStatsOnce(t *testing.T) {
	m, stats, _ := newTestManager()

	m.Navigate("tab-1", "https://malware-example.com/", checker.DefaultSettings())
	first, err := m.Complete("tab-1", 0)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !first.Completed {
		t.Error("result should be marked completed")
	}
	m.Complete("tab-1", 0)
	m.Close("tab-1")

	got := stats.Snapshot()
	if got.SitesScanned != 1 || got.MalwareDetected != 1 || got.ThreatsBlocked != 1 {
		t.Errorf("unexpected stats: %+v", got)
	}
}

func TestCloseFinalizesAndForgets(t *testing.T) {
	m, stats, _ := newTestManager()

	m.Navigate("tab-1", "https://paypa1-login.com/", checker.DefaultSettings())
	result, err := m.Close("tab-1")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !result.Completed {
		t.Error("close should finalize an open evaluation")
	}
	if got := stats.Snapshot(); got.SitesScanned != 1 || got.PhishingBlocked != 1 {
		t.Errorf("unexpected stats: %+v", got)
	}

	if _, err := m.Result("tab-1"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("Result err = %v, want ErrUnknownTarget", err)
	}
	if _, err := m.Close("tab-1"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("second Close err = %v, want ErrUnknownTarget", err)
	}
}

func TestUnknownAndMissingTargets(t *testing.T) {
	m, _, _ := newTestManager()

	testCases := []struct {
		name string
		call func() error
		want error
	}{
		{name: "content unknown", call: func() error { _, err := m.SubmitContent("nope", 0, checker.PageContent{}); return err }, want: ErrUnknownTarget},
		{name: "complete unknown", call: func() error { _, err := m.Complete("nope", 0); return err }, want: ErrUnknownTarget},
		{name: "navigate missing", call: func() error { _, err := m.Navigate("", "https://example.com/", checker.DefaultSettings()); return err }, want: ErrMissingTarget},
		{name: "result missing", call: func() error { _, err := m.Result(""); return err }, want: ErrMissingTarget},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	code, _ := checker.ClassifyError(fmt.Errorf("content: %w", ErrStaleGeneration))
	if code != checker.ErrorStaleGeneration {
		t.Errorf("code = %s, want %s", code, checker.ErrorStaleGeneration)
	}
}

func TestClassifyRequestCountsTrackers(t *testing.T) {
	rec := &recorder{}
	m, stats, _ := newTestManager(WithNotifier(rec))
	settings := checker.DefaultSettings()

	m.Navigate("tab-1", "https://shop.example.com/", settings)

	decision := m.ClassifyRequest("tab-1", "https://www.googletagmanager.com/gtm.js", settings)
	if !decision.Block {
		t.Fatal("tag manager should be blocked")
	}
	m.ClassifyRequest("tab-1", "https://cdn.example.com/app.js", settings)
	m.ClassifyRequest("", "https://connect.facebook.net/en_US/fbevents.js", settings)

	result, _ := m.Result("tab-1")
	if result.TrackersBlocked != 1 {
		t.Errorf("trackers_blocked = %d, want 1", result.TrackersBlocked)
	}
	if got := stats.Snapshot().TrackersBlocked; got != 2 {
		t.Errorf("stats trackers = %d, want 2", got)
	}
	if len(rec.trackers) != 2 {
		t.Errorf("tracker events = %d, want 2", len(rec.trackers))
	}
	if n := len(rec.results); n != 2 || rec.results[n-1].TrackersBlocked != 1 {
		t.Errorf("blocked tracker should publish the rebuilt result, got %d results", n)
	}

	settings.BlockTrackers = false
	if m.ClassifyRequest("tab-1", "https://www.googletagmanager.com/gtm.js", settings).Block {
		t.Error("tracker must be allowed when blocking is off")
	}
}

func TestCPUSamplingBounds(t *testing.T) {
	m, _, _ := newTestManager()

	m.Navigate("tab-1", "https://shop.example.com/", checker.DefaultSettings())
	for i := 0; i < checker.MaxCPUSampleWindows; i++ {
		m.SubmitCPUSample("tab-1", 0, 500)
	}
	// Past the cap a starved window is ignored
	result, _ := m.SubmitCPUSample("tab-1", 0, 0)
	if len(result.Threats) != 0 {
		t.Errorf("sampling past the cap produced %+v", result.Threats)
	}

	m.Navigate("tab-1", "https://miner.example.com/", checker.DefaultSettings())
	result, _ = m.SubmitCPUSample("tab-1", 0, 3)
	if len(result.Threats) != 1 || result.Threats[0].Kind != checker.KindHighCPUUsage {
		t.Errorf("expected one high_cpu_usage threat, got %+v", result.Threats)
	}
}

func TestWarningsPublishedImmediately(t *testing.T) {
	rec := &recorder{}
	m, _, _ := newTestManager(WithNotifier(rec))

	m.Navigate("tab-1", "http://login.example.com/", checker.DefaultSettings())
	result, _ := m.SubmitContent("tab-1", 0, checker.PageContent{
		Forms: []checker.Form{{Method: "POST", HasPassword: true}},
	})

	if len(rec.warnings) != 1 || rec.warnings[0].Kind != checker.KindInsecurePasswordForm {
		t.Fatalf("expected one insecure password warning, got %+v", rec.warnings)
	}
	if result.RiskScore != 0 {
		t.Errorf("warnings must not affect the score, got %d", result.RiskScore)
	}
}

// gatedRecorder holds the first warning until release is closed
type gatedRecorder struct {
	recorder
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRecorder) WarningRaised(key string, generation uint64, w checker.Warning) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	g.recorder.WarningRaised(key, generation, w)
}

func TestSupersededResultNeverPublishedLast(t *testing.T) {
	rec := &gatedRecorder{entered: make(chan struct{}), release: make(chan struct{})}
	m, _, _ := newTestManager(WithNotifier(rec))
	settings := checker.DefaultSettings()

	first, _ := m.Navigate("tab-1", "http://login.example.com/", settings)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.SubmitContent("tab-1", first.Generation, checker.PageContent{
			Forms: []checker.Form{{Method: "POST", HasPassword: true}},
		})
	}()

	<-rec.entered
	var second checker.AnalysisResult
	go func() {
		defer wg.Done()
		second, _ = m.Navigate("tab-1", "http://login.example.com/next", settings)
	}()

	// Let the second navigation reach the session before the first publish resumes
	time.Sleep(20 * time.Millisecond)
	close(rec.release)
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	last := rec.results[len(rec.results)-1]
	if last.Generation != second.Generation {
		t.Fatalf("last published generation = %d, want %d", last.Generation, second.Generation)
	}
	for i := 1; i < len(rec.results); i++ {
		if rec.results[i].Generation < rec.results[i-1].Generation {
			t.Errorf("generation %d published after %d", rec.results[i].Generation, rec.results[i-1].Generation)
		}
	}
}

func TestTargetsAreIsolated(t *testing.T) {
	m, _, _ := newTestManager()

	m.Navigate("tab-1", "https://paypa1-login.com/", checker.DefaultSettings())
	m.Navigate("tab-2", "https://example.com/", checker.DefaultSettings())
	m.SubmitContent("tab-1", 0, checker.PageContent{Text: "security alert"})

	clean, _ := m.Result("tab-2")
	if len(clean.Threats) != 0 {
		t.Errorf("tab-2 picked up tab-1 threats: %+v", clean.Threats)
	}
}

func TestEvaluationKeepsPatternSnapshot(t *testing.T) {
	m, _, store := newTestManager()

	m.Navigate("tab-1", "https://shop.example.com/", checker.DefaultSettings())

	f := patterns.Defaults()
	f.PhishingKeywords = []string{"limited offer"}
	next, err := patterns.Compile(f)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	store.Swap(next)

	result, _ := m.SubmitContent("tab-1", 0, checker.PageContent{Text: "security alert, limited offer"})
	if len(result.Threats) != 1 || result.Threats[0].Description != `Phishing language detected: "security alert"` {
		t.Errorf("evaluation should keep the set it started with, got %+v", result.Threats)
	}

	m.Navigate("tab-1", "https://shop.example.com/", checker.DefaultSettings())
	result, _ = m.SubmitContent("tab-1", 0, checker.PageContent{Text: "security alert, limited offer"})
	if len(result.Threats) != 1 || result.Threats[0].Description != `Phishing language detected: "limited offer"` {
		t.Errorf("new navigation should use the swapped set, got %+v", result.Threats)
	}
}

func TestConcurrentNavigationsAndContent(t *testing.T) {
	m, _, _ := newTestManager()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("tab-%d", i%3)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Navigate(key, "https://shop.example.com/", checker.DefaultSettings())
				m.SubmitContent(key, 0, checker.PageContent{Text: "security alert"})
				m.ClassifyRequest(key, "https://www.google-analytics.com/collect", checker.DefaultSettings())
				m.Complete(key, 0)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 3; i++ {
		result, err := m.Result(fmt.Sprintf("tab-%d", i))
		if err != nil {
			t.Fatalf("result failed: %v", err)
		}
		if result.RiskScore > 100 {
			t.Errorf("score out of range: %d", result.RiskScore)
		}
	}
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m, stats, _ := newTestManager(WithClock(clock))

	m.Navigate("old", "https://example.com/", checker.DefaultSettings())
	now = now.Add(10 * time.Minute)
	m.Navigate("fresh", "https://example.org/", checker.DefaultSettings())

	janitor := NewJanitor(m, 5*time.Minute, time.Minute, logging.Discard())
	if evicted := janitor.Sweep(); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if _, err := m.Result("old"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("idle target should be gone, err = %v", err)
	}
	if _, err := m.Result("fresh"); err != nil {
		t.Errorf("active target evicted: %v", err)
	}
	if got := stats.Snapshot().SitesScanned; got != 1 {
		t.Errorf("evicted evaluation should be recorded once, sites_scanned = %d", got)
	}
}

func TestJanitorStartStop(t *testing.T) {
	m, _, _ := newTestManager()
	janitor := NewJanitor(m, time.Minute, 10*time.Millisecond, logging.Discard())
	janitor.Start()
	time.Sleep(30 * time.Millisecond)
	janitor.Stop()
}

func TestJanitorWithoutIntervalDoesNotStart(t *testing.T) {
	m, _, _ := newTestManager()

	for _, interval := range []time.Duration{0, -time.Second} {
		janitor := NewJanitor(m, time.Minute, interval, logging.Discard())
		janitor.Start()
		janitor.Stop()
	}
}
