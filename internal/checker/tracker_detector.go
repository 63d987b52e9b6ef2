package checker

import (
	"github.com/olegrjumin/threatlens/internal/patterns"
)

// TrackerDecision is the block/allow verdict for one outbound request
type TrackerDecision struct {
	Block      bool   `json:"block"`
	Domain     string `json:"domain,omitempty"`
	RequestURL string `json:"request_url"`
	Vendor     string `json:"vendor,omitempty"`   // e.g. "Google Analytics"
	Category   string `json:"category,omitempty"` // Analytics, Advertising, Social, etc.
	Reason     string `json:"reason,omitempty"`
}

// ClassifyRequest decides whether an outbound request goes to a tracker.
// It only does set and regex lookups, so it is safe to call on the request path.
func ClassifyRequest(requestURL string, settings Settings, set *patterns.Set) TrackerDecision {
	decision := TrackerDecision{RequestURL: requestURL}

	if !settings.BlockTrackers {
		return decision
	}

	host := hostOf(requestURL)
	if host == "" {
		return decision
	}
	decision.Domain = host

	// Known vendor domains first, so the event can name the vendor
	if info, ok := set.TrackerFor(host); ok {
		decision.Block = true
		decision.Vendor = info.Name
		decision.Category = info.Category
		decision.Reason = "known tracker domain"
		return decision
	}

	if set.MatchesTrackerPattern(host) {
		decision.Block = true
		decision.Reason = "matches tracker pattern"
	}

	return decision
}
