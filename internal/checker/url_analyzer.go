package checker

import (
	"strings"

	"github.com/olegrjumin/threatlens/internal/patterns"
)

// AnalyzeURLStructure inspects the shape of u.
// Returns nil when nothing about the structure is suspicious.
func AnalyzeURLStructure(u *URL, set *patterns.Set) *Threat {
	// An IP-literal host is decisive on its own
	if u.IsIPLiteral() {
		return &Threat{
			Kind:        KindSuspiciousURL,
			Severity:    SeverityMedium,
			Description: "IP address used instead of domain name",
			Score:       ScoreIPLiteralHost,
		}
	}

	score := 0
	var reasons []string

	if u.Length > MaxURLLength {
		score += ScoreLongURL
		reasons = append(reasons, "Unusually long URL")
	}

	if len(u.Labels()) > MaxHostLabels {
		score += ScoreDeepSubdomains
		reasons = append(reasons, "Excessive number of subdomains")
	}

	if set.MatchSuspiciousPath(strings.ToLower(u.Path)) {
		score += ScoreSuspiciousPath
		reasons = append(reasons, "Suspicious path pattern")
	}

	if score == 0 {
		return nil
	}

	return &Threat{
		Kind:        KindSuspiciousURL,
		Severity:    SeverityMedium,
		Description: reasons[0],
		Score:       score,
	}
}
