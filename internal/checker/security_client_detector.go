package checker

import (
	"fmt"

	"github.com/olegrjumin/threatlens/internal/patterns"
)

// SecurityClientDetector inspects script elements for dangerous origins and code
type SecurityClientDetector struct{}

// NewSecurityClientDetector creates a new client-side script detector
func NewSecurityClientDetector() *SecurityClientDetector {
	return &SecurityClientDetector{}
}

// DetectExternalScripts flags scripts loaded from suspicious hosts
func (d *SecurityClientDetector) DetectExternalScripts(page *URL, scripts []Script, set *patterns.Set) []Threat {
	var threats []Threat
	for _, script := range scripts {
		if script.Src == "" {
			continue
		}

		host := resolveHost(page, script.Src)
		if host == "" {
			continue
		}

		if reason, ok := suspiciousScriptHost(host, set); ok {
			threats = append(threats, newContentThreat(
				KindSuspiciousExternalScript,
				SeverityMedium,
				fmt.Sprintf("Script loaded from %s (%s)", host, reason),
			))
		}
	}
	return threats
}

// DetectInlineScripts flags inline scripts containing a dangerous pattern.
// One threat per script, naming the first pattern found.
func (d *SecurityClientDetector) DetectInlineScripts(scripts []Script, set *patterns.Set) []Threat {
	var threats []Threat
	for _, script := range scripts {
		if script.Inline == "" {
			continue
		}

		if name, ok := set.MatchScript(script.Inline); ok {
			threats = append(threats, newContentThreat(
				KindSuspiciousInlineScript,
				SeverityMedium,
				fmt.Sprintf("Inline script uses %s", name),
			))
		}
	}
	return threats
}

// suspiciousScriptHost explains why a script host looks dangerous
func suspiciousScriptHost(host string, set *patterns.Set) (string, bool) {
	if ipv4Pattern.MatchString(host) {
		return "IP address host", true
	}
	if set.LooksRandom(host) {
		return "random-looking domain", true
	}
	if shortener, ok := set.Shortener(host); ok {
		return "URL shortener " + shortener, true
	}
	if tld, ok := set.SuspiciousTLD(host); ok {
		return "suspicious TLD " + tld, true
	}
	return "", false
}
