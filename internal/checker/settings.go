package checker

import "strings"

// Scan frequency values
const (
	ScanRealtime = "realtime" // every content submission is scanned, CPU sampling enabled
	ScanOnLoad   = "onload"   // only the first content submission is scanned
)

// Settings holds the host's protection toggles for one evaluation.
// Settings are passed in per call and never persisted by the engine.
type Settings struct {
	// RealTimeProtection turns the whole engine on or off
	RealTimeProtection bool `json:"realTimeProtection"`

	// Category toggles; a disabled category contributes nothing to the score
	BlockMaliciousSites bool `json:"blockMaliciousSites"`
	BlockPhishing       bool `json:"blockPhishing"`
	BlockTrackers       bool `json:"blockTrackers"`
	BlockCryptominers   bool `json:"blockCryptominers"`

	// ShowWarnings and NotificationLevel gate what is surfaced to the user
	ShowWarnings      bool     `json:"showWarnings"`
	NotificationLevel Severity `json:"notificationLevel"`

	// ScanFrequency is ScanRealtime or ScanOnLoad
	ScanFrequency string `json:"scanFrequency"`

	// WhitelistMode skips analysis for hosts under a Whitelist domain
	WhitelistMode bool     `json:"whitelistMode"`
	Whitelist     []string `json:"whitelist,omitempty"`
}

// DefaultSettings returns Settings with every protection enabled
func DefaultSettings() Settings {
	return Settings{
		RealTimeProtection:  true,
		BlockMaliciousSites: true,
		BlockPhishing:       true,
		BlockTrackers:       true,
		BlockCryptominers:   true,
		ShowWarnings:        true,
		NotificationLevel:   SeverityMedium,
		ScanFrequency:       ScanRealtime,
		WhitelistMode:       false,
	}
}

// Enabled reports whether threats of kind may contribute to a result
func (s Settings) Enabled(kind ThreatKind) bool {
	if !s.RealTimeProtection {
		return false
	}

	switch CategoryOf(kind) {
	case CategoryMalware:
		return s.BlockMaliciousSites
	case CategoryPhishing:
		return s.BlockPhishing
	case CategoryCryptomining:
		return s.BlockCryptominers
	default:
		return true
	}
}

// ShouldNotify reports whether a finding of severity is surfaced to the user
func (s Settings) ShouldNotify(severity Severity) bool {
	if !s.ShowWarnings {
		return false
	}
	level := s.NotificationLevel
	if level.Rank() == 0 {
		level = SeverityLow
	}
	return severity.Rank() >= level.Rank()
}

// Whitelisted reports whether host is exempt from analysis
func (s Settings) Whitelisted(host string) bool {
	if !s.WhitelistMode || host == "" {
		return false
	}

	for _, entry := range s.Whitelist {
		entry = strings.Trim(strings.ToLower(strings.TrimSpace(entry)), ".")
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// ScansEveryUpdate reports whether later content submissions are scanned
func (s Settings) ScansEveryUpdate() bool {
	return s.ScanFrequency != ScanOnLoad
}
