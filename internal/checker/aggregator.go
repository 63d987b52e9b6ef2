package checker

import (
	"time"

	"github.com/google/uuid"
)

// Score bounds
const (
	MinRiskScore = 0
	MaxRiskScore = 100
)

// ResultInput carries everything BuildResult needs for one evaluation
type ResultInput struct {
	ID              string
	TargetKey       string
	Generation      uint64
	URL             string
	Domain          string
	URLThreats      []Threat
	ContentThreats  []Threat
	Warnings        []Warning
	TrackersBlocked int
	Completed       bool
	Settings        Settings
	Timestamp       time.Time
}

// Aggregate combines URL-level then content-level threats, drops those whose
// category is disabled and returns the kept list with its clamped score.
// Threats are never deduplicated.
func Aggregate(urlThreats, contentThreats []Threat, settings Settings) ([]Threat, int) {
	threats := make([]Threat, 0, len(urlThreats)+len(contentThreats))
	score := 0

	for _, group := range [][]Threat{urlThreats, contentThreats} {
		for _, t := range group {
			if !settings.Enabled(t.Kind) {
				continue
			}
			threats = append(threats, t)
			score += t.Score
		}
	}

	return threats, clampScore(score)
}

// BuildResult aggregates the input into an AnalysisResult
func BuildResult(in ResultInput) AnalysisResult {
	threats, score := Aggregate(in.URLThreats, in.ContentThreats, in.Settings)

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	notify := false
	for _, t := range threats {
		if in.Settings.ShouldNotify(t.Severity) {
			notify = true
			break
		}
	}

	var warnings []Warning
	for _, w := range in.Warnings {
		if in.Settings.ShouldNotify(w.Severity) {
			warnings = append(warnings, w)
		}
	}

	return AnalysisResult{
		ID:              id,
		TargetKey:       in.TargetKey,
		Generation:      in.Generation,
		URL:             in.URL,
		Domain:          in.Domain,
		Threats:         threats,
		RiskScore:       score,
		IsSecure:        score < SecureThreshold,
		RiskLevel:       RiskLevelFor(score),
		Notify:          notify,
		Warnings:        warnings,
		TrackersBlocked: in.TrackersBlocked,
		Completed:       in.Completed,
		Timestamp:       ts,
	}
}

func clampScore(score int) int {
	if score < MinRiskScore {
		return MinRiskScore
	}
	if score > MaxRiskScore {
		return MaxRiskScore
	}
	return score
}
