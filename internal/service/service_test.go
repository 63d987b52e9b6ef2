package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
)

func boolPtr(b bool) *bool { return &b }

func newTestService(t *testing.T, hub *Hub) *Service {
	t.Helper()
	return New(patterns.NewStore(nil), nil, hub, logging.Discard(), checker.DefaultSettings())
}

func TestMergeSettings(t *testing.T) {
	svc := newTestService(t, nil)

	testCases := []struct {
		name      string
		overrides *SettingsOverride
		check     func(checker.Settings) bool
	}{
		{
			name:      "nil keeps defaults",
			overrides: nil,
			check:     func(s checker.Settings) bool { return s.BlockTrackers && s.NotificationLevel == checker.SeverityMedium },
		},
		{
			name:      "explicit false wins",
			overrides: &SettingsOverride{BlockTrackers: boolPtr(false)},
			check:     func(s checker.Settings) bool { return !s.BlockTrackers && s.BlockPhishing },
		},
		{
			name:      "valid level applied",
			overrides: &SettingsOverride{NotificationLevel: "critical"},
			check:     func(s checker.Settings) bool { return s.NotificationLevel == checker.SeverityCritical },
		},
		{
			name:      "unknown level ignored",
			overrides: &SettingsOverride{NotificationLevel: "extreme", ScanFrequency: "hourly"},
			check: func(s checker.Settings) bool {
				return s.NotificationLevel == checker.SeverityMedium && s.ScanFrequency == checker.ScanRealtime
			},
		},
		{
			name:      "whitelist",
			overrides: &SettingsOverride{WhitelistMode: boolPtr(true), Whitelist: []string{"example.com"}},
			check:     func(s checker.Settings) bool { return s.Whitelisted("www.example.com") },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(svc.Settings(tc.overrides)) {
				t.Errorf("unexpected settings: %+v", svc.Settings(tc.overrides))
			}
		})
	}
}

func TestServiceLifecyclePublishesEvents(t *testing.T) {
	hub := NewHub(32, logging.Discard())
	events, cancel := hub.Subscribe()
	defer cancel()

	svc := newTestService(t, hub)

	nav, err := svc.Navigate("tab-1", "http://login.example.com/", nil)
	if err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if _, err := svc.SubmitContent("tab-1", nav.Generation, checker.PageContent{
		Markup: `<form method="post"><input type="password" name="pw"></form><p>Security alert</p>`,
	}); err != nil {
		t.Fatalf("content failed: %v", err)
	}
	svc.ClassifyRequest("tab-1", "https://www.googletagmanager.com/gtm.js", nil)
	if _, err := svc.Complete("tab-1", nav.Generation); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	seen := map[string]int{}
	timeout := time.After(time.Second)
	for len(events) > 0 {
		select {
		case evt := <-events:
			seen[evt.Type]++
		case <-timeout:
			t.Fatal("timed out draining events")
		}
	}

	for _, typ := range []string{EventResult, EventWarning, EventTracker, EventStats} {
		if seen[typ] == 0 {
			t.Errorf("no %s event published (seen %v)", typ, seen)
		}
	}

	stats := svc.Stats()
	if stats.SitesScanned != 1 || stats.TrackersBlocked != 1 || stats.ThreatsBlocked != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSubmitContentExtractsMarkup(t *testing.T) {
	svc := newTestService(t, nil)
	svc.Navigate("tab-1", "https://shop.example.com/", nil)

	result, err := svc.SubmitContent("tab-1", 0, checker.PageContent{
		Markup: `<p>Verify your account</p><script>eval(atob(x))</script>`,
	})
	if err != nil {
		t.Fatalf("content failed: %v", err)
	}
	if !result.HasKind(checker.KindPhishingLanguage) || !result.HasKind(checker.KindSuspiciousInlineScript) {
		t.Errorf("markup was not expanded into structured content: %+v", result.Threats)
	}
}

func TestAnalyzeDoesNotTouchStats(t *testing.T) {
	svc := newTestService(t, nil)

	result := svc.Analyze("https://secure-login-verify.tk/confirm?x=1", nil, nil)
	if result.RiskScore != 70 {
		t.Errorf("score = %d, want 70", result.RiskScore)
	}
	if svc.Stats() != (checker.Stats{}) {
		t.Errorf("one-shot analysis changed stats: %+v", svc.Stats())
	}
}

func TestStatsResetAndRestore(t *testing.T) {
	svc := newTestService(t, nil)
	svc.RestoreStats(checker.Stats{SitesScanned: 7, ThreatsBlocked: 3})

	if got := svc.Stats().SitesScanned; got != 7 {
		t.Errorf("sites_scanned = %d, want 7", got)
	}
	if got := svc.ResetStats(); got != (checker.Stats{}) {
		t.Errorf("reset returned %+v", got)
	}
}

func TestReloadPatterns(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.ReloadPatterns(); !errors.Is(err, ErrNoPatternFile) {
		t.Errorf("err = %v, want ErrNoPatternFile", err)
	}
	if info := svc.Patterns(); info.Source != "built-in" || info.Version != 1 {
		t.Errorf("unexpected info: %+v", info)
	}

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	if err := os.WriteFile(path, []byte("phishing_keywords:\n  - claim your reward\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := patterns.NewStore(nil)
	reloader := patterns.NewReloader(path, time.Hour, store, logging.Discard())
	svc = New(store, reloader, nil, logging.Discard(), checker.DefaultSettings())

	info, err := svc.ReloadPatterns()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if info.Version != 2 || info.Source != path || info.Lists["phishing_keywords"] != 1 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestSummarizeResult(t *testing.T) {
	result := checker.BuildResult(checker.ResultInput{
		URLThreats: []checker.Threat{
			{Kind: checker.KindPhishing, Severity: checker.SeverityHigh, Description: "Suspicious top-level domain .tk", Score: 70},
			{Kind: checker.KindSuspiciousURL, Severity: checker.SeverityMedium, Description: "Suspicious path pattern", Score: 30},
		},
		Settings: checker.DefaultSettings(),
	})

	verdict := SummarizeResult(result)
	if verdict.Verdict != checker.RiskCritical {
		t.Errorf("verdict = %s, want %s", verdict.Verdict, checker.RiskCritical)
	}
	if verdict.TopThreat == nil || verdict.TopThreat.Kind != checker.KindPhishing {
		t.Errorf("top threat = %+v", verdict.TopThreat)
	}
	if verdict.Score.Phishing != 70 || verdict.Score.General != 30 || verdict.Score.Total != 100 {
		t.Errorf("unexpected breakdown: %+v", verdict.Score)
	}
	if verdict.Reason != "Suspicious top-level domain .tk (and 1 more)" {
		t.Errorf("reason = %q", verdict.Reason)
	}

	clean := SummarizeResult(checker.BuildResult(checker.ResultInput{Settings: checker.DefaultSettings()}))
	if clean.Verdict != checker.RiskSafe || clean.TopThreat != nil {
		t.Errorf("unexpected clean verdict: %+v", clean)
	}
}
