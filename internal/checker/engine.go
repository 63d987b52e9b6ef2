package checker

import (
	"fmt"
	"time"

	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
)

// detectorGuard isolates detector failures: a panicking detector is logged
// and contributes no threats, the others keep running
type detectorGuard struct {
	logger *logging.Logger
}

// run executes fn and returns its threats, or nil if it panicked
func (g detectorGuard) run(name string, fn func() []Threat) (threats []Threat) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Detector failed", "detector", name, "error", fmt.Sprint(r))
			threats = nil
		}
	}()
	return fn()
}

// call executes fn, logging and swallowing a panic
func (g detectorGuard) call(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Detector failed", "detector", name, "error", fmt.Sprint(r))
		}
	}()
	fn()
}

// URLEvaluation holds the URL-level findings for one navigation
type URLEvaluation struct {
	URL     *URL     `json:"url,omitempty"`
	Raw     string   `json:"raw"`
	Domain  string   `json:"domain"`
	Threats []Threat `json:"threats"`
	Skipped string   `json:"skipped,omitempty"` // why analysis did not run
	Err     error    `json:"-"`
}

// Engine is the stateless threat analysis entry point.
// All pattern data arrives per call, so one Engine serves every target.
type Engine struct {
	logger  *logging.Logger
	content *ContentScanner
	guard   detectorGuard
	now     func() time.Time
}

// New creates an Engine
func New(logger *logging.Logger) *Engine {
	return &Engine{
		logger:  logger,
		content: NewContentScanner(logger),
		guard:   detectorGuard{logger: logger},
		now:     time.Now,
	}
}

// EvaluateURL runs the structural, phishing and blocklist checks against raw.
// Malformed input skips the checks; it is never an error for the caller.
func (e *Engine) EvaluateURL(raw string, settings Settings, set *patterns.Set) URLEvaluation {
	eval := URLEvaluation{Raw: raw, Threats: []Threat{}}

	if !settings.RealTimeProtection {
		eval.Skipped = "real-time protection disabled"
		return eval
	}

	u, err := ParseURL(raw)
	if err != nil {
		eval.Skipped = "unparsable URL"
		eval.Err = err
		return eval
	}
	eval.URL = u
	eval.Domain = u.Domain

	if settings.Whitelisted(u.Host) {
		eval.Skipped = "whitelisted"
		return eval
	}

	single := func(fn func(*URL, *patterns.Set) *Threat) func() []Threat {
		return func() []Threat {
			if t := fn(u, set); t != nil {
				return []Threat{*t}
			}
			return nil
		}
	}

	eval.Threats = append(eval.Threats, e.guard.run("url_structure", single(AnalyzeURLStructure))...)
	eval.Threats = append(eval.Threats, e.guard.run("phishing", single(DetectPhishing))...)
	eval.Threats = append(eval.Threats, e.guard.run("malicious_domain", single(LookupMaliciousDomain))...)

	return eval
}

// ScanContent runs the content heuristics for one descriptor
func (e *Engine) ScanContent(content PageContent, settings Settings, set *patterns.Set) ContentFindings {
	if !settings.RealTimeProtection || content.IsEmpty() {
		return ContentFindings{Threats: []Threat{}}
	}

	if settings.WhitelistMode {
		if u, err := ParseURL(content.URL); err == nil && settings.Whitelisted(u.Host) {
			return ContentFindings{Threats: []Threat{}}
		}
	}

	return e.content.Scan(content, set)
}

// ClassifyRequest decides block/allow for one outbound request
func (e *Engine) ClassifyRequest(requestURL string, settings Settings, set *patterns.Set) TrackerDecision {
	var decision TrackerDecision
	e.guard.call("tracker", func() {
		decision = ClassifyRequest(requestURL, settings, set)
	})
	if decision.RequestURL == "" {
		decision.RequestURL = requestURL
	}
	return decision
}

// Analyze evaluates a URL and an optional content descriptor in one pass.
// Hosts that stream content incrementally use the session package instead.
func (e *Engine) Analyze(raw string, content *PageContent, settings Settings, set *patterns.Set) AnalysisResult {
	eval := e.EvaluateURL(raw, settings, set)

	var contentThreats []Threat
	if content != nil {
		if content.URL == "" {
			content.URL = raw
		}
		contentThreats = e.ScanContent(*content, settings, set).Threats
	}

	return BuildResult(ResultInput{
		URL:            raw,
		Domain:         eval.Domain,
		URLThreats:     eval.Threats,
		ContentThreats: contentThreats,
		Settings:       settings,
		Timestamp:      e.now(),
	})
}
