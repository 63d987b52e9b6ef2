package service

import (
	"errors"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
	"github.com/olegrjumin/threatlens/internal/session"
)

// ErrNoPatternFile is returned by ReloadPatterns when the service runs on built-in patterns
var ErrNoPatternFile = errors.New("no pattern file configured")

// SettingsOverride carries per-request settings. Nil fields keep the service default.
type SettingsOverride struct {
	RealTimeProtection  *bool    `json:"realTimeProtection,omitempty"`
	BlockMaliciousSites *bool    `json:"blockMaliciousSites,omitempty"`
	BlockPhishing       *bool    `json:"blockPhishing,omitempty"`
	BlockTrackers       *bool    `json:"blockTrackers,omitempty"`
	BlockCryptominers   *bool    `json:"blockCryptominers,omitempty"`
	ShowWarnings        *bool    `json:"showWarnings,omitempty"`
	NotificationLevel   string   `json:"notificationLevel,omitempty"`
	ScanFrequency       string   `json:"scanFrequency,omitempty"`
	WhitelistMode       *bool    `json:"whitelistMode,omitempty"`
	Whitelist           []string `json:"whitelist,omitempty"`
}

// PatternInfo describes the active pattern set
type PatternInfo struct {
	Version uint64         `json:"version"`
	Source  string         `json:"source"` // file path or "built-in"
	Lists   map[string]int `json:"lists"`
}

// Service provides the business logic layer for threat analysis
// It sits between the HTTP transport layer and the session/checker layer
type Service struct {
	engine   *checker.Engine
	manager  *session.Manager
	stats    *checker.StatsAccumulator
	store    *patterns.Store
	reloader *patterns.Reloader
	hub      *Hub
	logger   *logging.Logger
	settings checker.Settings
}

// New creates a new Service instance.
// reloader may be nil when patterns come from the built-in defaults.
func New(store *patterns.Store, reloader *patterns.Reloader, hub *Hub, logger *logging.Logger, defaults checker.Settings) *Service {
	engine := checker.New(logger)
	stats := checker.NewStatsAccumulator()

	var opts []session.Option
	if hub != nil {
		opts = append(opts, session.WithNotifier(hub))
	}

	return &Service{
		engine:   engine,
		manager:  session.NewManager(engine, store, stats, logger, opts...),
		stats:    stats,
		store:    store,
		reloader: reloader,
		hub:      hub,
		logger:   logger,
		settings: defaults,
	}
}

// Manager exposes the session manager, used to run the idle janitor
func (s *Service) Manager() *session.Manager {
	return s.manager
}

// Navigate starts the evaluation of a new page for target
func (s *Service) Navigate(target, url string, overrides *SettingsOverride) (checker.AnalysisResult, error) {
	return s.manager.Navigate(target, url, s.mergeSettings(overrides))
}

// SubmitContent scans a content descriptor for target. A descriptor that
// only carries markup is expanded with the HTML extractor first.
func (s *Service) SubmitContent(target string, generation uint64, content checker.PageContent) (checker.AnalysisResult, error) {
	if content.Markup != "" && onlyMarkup(content) {
		extracted, err := checker.ExtractPageContent(content.URL, content.Markup)
		if err != nil {
			s.logger.Warn("Markup extraction failed", "target", target, "error", err)
		} else {
			extracted.Frame = content.Frame
			content = extracted
		}
	}
	return s.manager.SubmitContent(target, generation, content)
}

// SubmitCPUSample feeds one CPU sampling window for target
func (s *Service) SubmitCPUSample(target string, generation uint64, iterations int) (checker.AnalysisResult, error) {
	return s.manager.SubmitCPUSample(target, generation, iterations)
}

// ClassifyRequest decides block/allow for an outbound request
func (s *Service) ClassifyRequest(target, url string, overrides *SettingsOverride) checker.TrackerDecision {
	return s.manager.ClassifyRequest(target, url, s.mergeSettings(overrides))
}

// Complete finalizes the evaluation of target and publishes the new stats
func (s *Service) Complete(target string, generation uint64) (checker.AnalysisResult, error) {
	result, err := s.manager.Complete(target, generation)
	if err == nil {
		s.publishStats()
	}
	return result, err
}

// Close forgets target after finalizing its evaluation
func (s *Service) Close(target string) (checker.AnalysisResult, error) {
	result, err := s.manager.Close(target)
	if err == nil {
		s.publishStats()
	}
	return result, err
}

// Result returns the latest result for target
func (s *Service) Result(target string) (checker.AnalysisResult, error) {
	return s.manager.Result(target)
}

// Analyze evaluates a URL and optional content in one call, outside any session.
// It does not touch the stats.
func (s *Service) Analyze(url string, content *checker.PageContent, overrides *SettingsOverride) checker.AnalysisResult {
	settings := s.mergeSettings(overrides)
	set := s.store.Current()

	s.logger.Info("Analyzing URL", "url", url, "patterns_version", set.Version)
	result := s.engine.Analyze(url, content, settings, set)
	s.logger.Info("Analysis completed",
		"url", url,
		"score", result.RiskScore,
		"secure", result.IsSecure,
		"threats", len(result.Threats),
	)
	return result
}

// Stats returns the cumulative counters
func (s *Service) Stats() checker.Stats {
	return s.stats.Snapshot()
}

// ResetStats zeroes the counters
func (s *Service) ResetStats() checker.Stats {
	s.stats.Reset()
	s.logger.Info("Stats reset")
	s.publishStats()
	return s.stats.Snapshot()
}

// RestoreStats loads previously persisted counters
func (s *Service) RestoreStats(stats checker.Stats) {
	s.stats.Restore(stats)
	s.publishStats()
}

// Patterns describes the active pattern set
func (s *Service) Patterns() PatternInfo {
	set := s.store.Current()
	source := "built-in"
	if s.reloader != nil {
		source = s.reloader.Path()
	}
	return PatternInfo{
		Version: set.Version,
		Source:  source,
		Lists:   set.Summary(),
	}
}

// ReloadPatterns reloads the pattern file now. On failure the active set is kept.
func (s *Service) ReloadPatterns() (PatternInfo, error) {
	if s.reloader == nil {
		return s.Patterns(), ErrNoPatternFile
	}
	if err := s.reloader.Reload(); err != nil {
		s.logger.Error("Pattern reload failed", "error", err)
		return s.Patterns(), err
	}
	return s.Patterns(), nil
}

// Settings returns the service defaults merged with overrides
func (s *Service) Settings(overrides *SettingsOverride) checker.Settings {
	return s.mergeSettings(overrides)
}

func (s *Service) publishStats() {
	if s.hub != nil {
		s.hub.PublishStats(s.stats.Snapshot())
	}
}

// mergeSettings merges provided overrides with service defaults
// If overrides is nil, returns service defaults
func (s *Service) mergeSettings(o *SettingsOverride) checker.Settings {
	merged := s.settings
	if o == nil {
		return merged
	}

	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&merged.RealTimeProtection, o.RealTimeProtection)
	setBool(&merged.BlockMaliciousSites, o.BlockMaliciousSites)
	setBool(&merged.BlockPhishing, o.BlockPhishing)
	setBool(&merged.BlockTrackers, o.BlockTrackers)
	setBool(&merged.BlockCryptominers, o.BlockCryptominers)
	setBool(&merged.ShowWarnings, o.ShowWarnings)
	setBool(&merged.WhitelistMode, o.WhitelistMode)

	if level := checker.Severity(o.NotificationLevel); level.Rank() > 0 {
		merged.NotificationLevel = level
	}
	if o.ScanFrequency == checker.ScanRealtime || o.ScanFrequency == checker.ScanOnLoad {
		merged.ScanFrequency = o.ScanFrequency
	}
	if o.Whitelist != nil {
		merged.Whitelist = o.Whitelist
	}

	return merged
}

// onlyMarkup reports whether the descriptor carries markup and nothing structured
func onlyMarkup(c checker.PageContent) bool {
	return c.Text == "" && len(c.Forms) == 0 && len(c.Scripts) == 0 &&
		len(c.Images) == 0 && len(c.Elements) == 0
}
