package checker

import (
	"fmt"
	"regexp"
	"strings"
)

// SecurityFormsDetector analyzes form descriptors for credential risks
type SecurityFormsDetector struct {
	patterns map[string]*regexp.Regexp
}

// NewSecurityFormsDetector creates a new forms security detector
func NewSecurityFormsDetector() *SecurityFormsDetector {
	detector := &SecurityFormsDetector{
		patterns: make(map[string]*regexp.Regexp),
	}
	detector.initPatterns()
	return detector
}

// initPatterns initializes regex patterns for sensitive field names
func (d *SecurityFormsDetector) initPatterns() {
	d.patterns["creditCard"] = regexp.MustCompile(`(?i)(credit[_-]?card|card[_-]?number|ccnum|cc[_-]?num)`)
	d.patterns["ssn"] = regexp.MustCompile(`(?i)(ssn|social[_-]?security)`)
	d.patterns["cvv"] = regexp.MustCompile(`(?i)(cvv|cvc|security[_-]?code)`)
}

// DetectExternalLoginForms flags password forms that submit to another host
func (d *SecurityFormsDetector) DetectExternalLoginForms(page *URL, forms []Form) []Threat {
	if page == nil {
		return nil
	}

	var threats []Threat
	for _, form := range forms {
		if !form.HasPassword {
			continue
		}

		actionHost := resolveHost(page, form.Action)
		if actionHost == "" || actionHost == page.Host {
			continue
		}

		threats = append(threats, newContentThreat(
			KindExternalLoginForm,
			SeverityHigh,
			fmt.Sprintf("Login form submits credentials to external domain %s", actionHost),
		))
	}
	return threats
}

// DetectHiddenInputs flags oversized hidden inputs, a common exfiltration carrier
func (d *SecurityFormsDetector) DetectHiddenInputs(forms []Form) []Threat {
	var threats []Threat
	for _, form := range forms {
		for _, input := range form.HiddenInputs {
			if len(input.Value) <= MaxHiddenInputLength {
				continue
			}

			name := input.Name
			if name == "" {
				name = "(unnamed)"
			}
			threats = append(threats, newContentThreat(
				KindSuspiciousHiddenInput,
				SeverityMedium,
				fmt.Sprintf("Hidden input %s carries %d characters of data", name, len(input.Value)),
			))
		}
	}
	return threats
}

// Warnings returns the findings that must reach the user right away
func (d *SecurityFormsDetector) Warnings(page *URL, forms []Form) []Warning {
	if page == nil {
		return nil
	}

	var warnings []Warning
	for _, form := range forms {
		// Password over plain HTTP or in the query string
		if form.HasPassword {
			switch {
			case !page.IsHTTPS():
				warnings = append(warnings, Warning{
					Kind:     KindInsecurePasswordForm,
					Severity: SeverityHigh,
					Message:  "This page asks for a password over an insecure connection",
				})
			case strings.EqualFold(strings.TrimSpace(form.Method), "GET"):
				warnings = append(warnings, Warning{
					Kind:     KindInsecurePasswordForm,
					Severity: SeverityHigh,
					Message:  "This login form sends your password in the page address",
				})
			}
		}

		// Card or identity numbers over plain HTTP
		if !page.IsHTTPS() {
			if field, ok := d.sensitiveField(form.InputNames); ok {
				warnings = append(warnings, Warning{
					Kind:     KindInsecureSensitiveData,
					Severity: SeverityHigh,
					Message:  fmt.Sprintf("This page collects %s over an insecure connection", field),
				})
			}
		}
	}
	return warnings
}

// sensitiveField returns a readable label for the first sensitive input name
func (d *SecurityFormsDetector) sensitiveField(names []string) (string, bool) {
	labels := []struct{ key, label string }{
		{"creditCard", "card numbers"},
		{"cvv", "card security codes"},
		{"ssn", "social security numbers"},
	}

	for _, name := range names {
		for _, l := range labels {
			if d.patterns[l.key].MatchString(name) {
				return l.label, true
			}
		}
	}
	return "", false
}
