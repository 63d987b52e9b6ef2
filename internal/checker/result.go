package checker

import "time"

// SecureThreshold is the score below which a result is considered secure
const SecureThreshold = 30

// Risk level bands
const (
	RiskSafe       = "safe"
	RiskSuspicious = "suspicious"
	RiskDangerous  = "dangerous"
	RiskCritical   = "critical"
)

// AnalysisResult is the engine's verdict for one navigation
type AnalysisResult struct {
	ID         string `json:"id"`                   // Stable for the lifetime of one generation
	TargetKey  string `json:"target_key,omitempty"` // Tab or context the result belongs to
	Generation uint64 `json:"generation,omitempty"` // Navigation counter within TargetKey

	URL    string `json:"url"`
	Domain string `json:"domain"` // Registrable domain, empty when the URL was unusable

	Threats   []Threat `json:"threats"`
	RiskScore int      `json:"risk_score"` // 0-100
	IsSecure  bool     `json:"is_secure"`  // RiskScore < SecureThreshold
	RiskLevel string   `json:"risk_level"` // safe, suspicious, dangerous, critical

	Notify   bool      `json:"notify"`             // At least one threat meets the notification level
	Warnings []Warning `json:"warnings,omitempty"` // Immediate warnings that meet the notification level

	TrackersBlocked int       `json:"trackers_blocked"`
	Completed       bool      `json:"completed"`
	Timestamp       time.Time `json:"timestamp"`
}

// RiskLevelFor maps a score to its band
func RiskLevelFor(score int) string {
	switch {
	case score < SecureThreshold:
		return RiskSafe
	case score < 60:
		return RiskSuspicious
	case score < 80:
		return RiskDangerous
	default:
		return RiskCritical
	}
}

// HasKind reports whether any threat in the result is of kind
func (r AnalysisResult) HasKind(kind ThreatKind) bool {
	for _, t := range r.Threats {
		if t.Kind == kind {
			return true
		}
	}
	return false
}
