package checker

// ThreatKind names the detector finding
type ThreatKind string

// URL-level kinds
const (
	KindSuspiciousURL   ThreatKind = "suspicious_url"
	KindPhishing        ThreatKind = "phishing"
	KindMaliciousDomain ThreatKind = "malicious_domain"
)

// Content-level kinds
const (
	KindPhishingLanguage         ThreatKind = "phishing_language"
	KindExternalLoginForm        ThreatKind = "external_login_form"
	KindFakeSecurityBadge        ThreatKind = "fake_security_badge"
	KindSuspiciousHiddenInput    ThreatKind = "suspicious_hidden_input"
	KindSuspiciousExternalScript ThreatKind = "suspicious_external_script"
	KindSuspiciousInlineScript   ThreatKind = "suspicious_inline_script"
	KindHiddenMaliciousElement   ThreatKind = "hidden_malicious_element"
	KindPotentialClickjacking    ThreatKind = "potential_clickjacking"
	KindCrossOriginFraming       ThreatKind = "cross_origin_framing"
	KindCryptominingScript       ThreatKind = "cryptomining_script"
	KindHighCPUUsage             ThreatKind = "high_cpu_usage"
)

// Immediate-warning kinds, never aggregated into the score
const (
	KindInsecurePasswordForm  ThreatKind = "insecure_password_form"
	KindInsecureSensitiveData ThreatKind = "insecure_sensitive_data"
)

// Severity is the threat severity scale
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities, unknown values rank below low
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Fixed URL-level score contributions and detector thresholds
const (
	ScoreIPLiteralHost    = 40
	ScoreLongURL          = 20
	ScoreDeepSubdomains   = 25
	ScoreSuspiciousPath   = 30
	ScorePhishing         = 70
	ScoreMaliciousDomain  = 80
	MaxURLLength          = 100
	MaxHostLabels         = 4
	MaxHiddenInputLength  = 200
	MinVisibleElementSize = 5
)

// SeverityScore is the score contribution of a content-level threat
func SeverityScore(s Severity) int {
	switch s {
	case SeverityLow:
		return 5
	case SeverityMedium:
		return 15
	case SeverityHigh:
		return 30
	case SeverityCritical:
		return 50
	default:
		return 0
	}
}

// Threat is one detected security-relevant condition
type Threat struct {
	Kind        ThreatKind `json:"kind"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
	Score       int        `json:"score_contribution"`
}

// newContentThreat builds a content-level threat scored by severity
func newContentThreat(kind ThreatKind, severity Severity, description string) Threat {
	return Threat{
		Kind:        kind,
		Severity:    severity,
		Description: description,
		Score:       SeverityScore(severity),
	}
}

// Category groups threat kinds under one Settings toggle
type Category string

const (
	CategoryGeneral      Category = "general"
	CategoryMalware      Category = "malware"
	CategoryPhishing     Category = "phishing"
	CategoryCryptomining Category = "cryptomining"
)

// CategoryOf maps a kind to the settings category that controls it
func CategoryOf(kind ThreatKind) Category {
	switch kind {
	case KindMaliciousDomain:
		return CategoryMalware
	case KindPhishing, KindPhishingLanguage, KindExternalLoginForm, KindFakeSecurityBadge:
		return CategoryPhishing
	case KindCryptominingScript, KindHighCPUUsage:
		return CategoryCryptomining
	default:
		return CategoryGeneral
	}
}

// Warning is a time-sensitive finding surfaced to the user immediately
type Warning struct {
	Kind     ThreatKind `json:"kind"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
}
