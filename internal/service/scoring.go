package service

import (
	"fmt"

	"github.com/olegrjumin/threatlens/internal/checker"
)

// ScoreBreakdown splits a risk score by settings category
type ScoreBreakdown struct {
	Malware      int `json:"malware"`
	Phishing     int `json:"phishing"`
	Cryptomining int `json:"cryptomining"`
	General      int `json:"general"`
	Total        int `json:"total"` // clamped, equals the result's risk score
}

// VerdictResult is a human-oriented summary of an AnalysisResult
type VerdictResult struct {
	Verdict        string          `json:"verdict"`              // safe, suspicious, dangerous, critical
	Reason         string          `json:"reason"`               // Brief explanation
	Recommendation string          `json:"recommendation"`       // What the user should do
	TopThreat      *checker.Threat `json:"top_threat,omitempty"` // Highest contributing threat
	Score          ScoreBreakdown  `json:"score"`
}

// SummarizeResult computes the verdict for a result
func SummarizeResult(result checker.AnalysisResult) *VerdictResult {
	verdict := &VerdictResult{
		Verdict: result.RiskLevel,
		Score:   calculateBreakdown(result),
	}

	for i := range result.Threats {
		t := result.Threats[i]
		if verdict.TopThreat == nil || t.Score > verdict.TopThreat.Score {
			verdict.TopThreat = &t
		}
	}

	switch {
	case verdict.TopThreat == nil:
		verdict.Reason = "No threats detected"
	case len(result.Threats) == 1:
		verdict.Reason = verdict.TopThreat.Description
	default:
		verdict.Reason = fmt.Sprintf("%s (and %d more)", verdict.TopThreat.Description, len(result.Threats)-1)
	}

	switch result.RiskLevel {
	case checker.RiskSafe:
		verdict.Recommendation = "No action needed"
	case checker.RiskSuspicious:
		verdict.Recommendation = "Proceed with caution and avoid entering personal information"
	case checker.RiskDangerous:
		verdict.Recommendation = "Do not enter credentials or payment details on this site"
	default:
		verdict.Recommendation = "Leave this site"
	}

	return verdict
}

// calculateBreakdown sums threat scores per category
func calculateBreakdown(result checker.AnalysisResult) ScoreBreakdown {
	b := ScoreBreakdown{Total: result.RiskScore}
	for _, t := range result.Threats {
		switch checker.CategoryOf(t.Kind) {
		case checker.CategoryMalware:
			b.Malware += t.Score
		case checker.CategoryPhishing:
			b.Phishing += t.Score
		case checker.CategoryCryptomining:
			b.Cryptomining += t.Score
		default:
			b.General += t.Score
		}
	}
	return b
}
