package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
)

// hiddenElementTags are the elements the hidden-element check considers
var hiddenElementTags = map[string]bool{
	"iframe": true,
	"div":    true,
	"embed":  true,
	"object": true,
}

// ContentScanner evaluates page-level signals. Every check runs independently.
type ContentScanner struct {
	forms   *SecurityFormsDetector
	scripts *SecurityClientDetector
	guard   detectorGuard
}

// NewContentScanner creates a scanner that logs detector failures to logger
func NewContentScanner(logger *logging.Logger) *ContentScanner {
	return &ContentScanner{
		forms:   NewSecurityFormsDetector(),
		scripts: NewSecurityClientDetector(),
		guard:   detectorGuard{logger: logger},
	}
}

// Scan runs all content checks against one descriptor
func (s *ContentScanner) Scan(content PageContent, set *patterns.Set) ContentFindings {
	findings := ContentFindings{Threats: []Threat{}}

	// Checks that depend on the page host are skipped when the URL is unusable
	page, err := ParseURL(content.URL)
	if err != nil {
		page = nil
	}

	run := func(name string, fn func() []Threat) {
		findings.Threats = append(findings.Threats, s.guard.run(name, fn)...)
	}

	run("phishing_language", func() []Threat { return detectPhishingLanguage(content.Text, set) })
	run("external_login_form", func() []Threat { return s.forms.DetectExternalLoginForms(page, content.Forms) })
	run("fake_security_badge", func() []Threat { return detectFakeBadges(page, content.Images, set) })
	run("hidden_input", func() []Threat { return s.forms.DetectHiddenInputs(content.Forms) })
	run("external_script", func() []Threat { return s.scripts.DetectExternalScripts(page, content.Scripts, set) })
	run("inline_script", func() []Threat { return s.scripts.DetectInlineScripts(content.Scripts, set) })
	run("hidden_element", func() []Threat { return detectHiddenElements(content.Elements) })
	run("framing", func() []Threat { return detectFraming(page, content.Frame) })
	run("cryptomining_markup", func() []Threat { return detectMiningMarkup(content.Markup, set) })

	s.guard.call("form_warnings", func() {
		findings.Warnings = s.forms.Warnings(page, content.Forms)
	})

	return findings
}

// detectPhishingLanguage emits one threat per phishing phrase in the text
func detectPhishingLanguage(text string, set *patterns.Set) []Threat {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var threats []Threat
	for _, keyword := range set.PhishingKeywords() {
		if strings.Contains(lower, keyword) {
			threats = append(threats, newContentThreat(
				KindPhishingLanguage,
				SeverityLow,
				fmt.Sprintf("Phishing language detected: %q", keyword),
			))
		}
	}
	return threats
}

// detectFakeBadges flags security seals not served by a known vendor
func detectFakeBadges(page *URL, images []Image, set *patterns.Set) []Threat {
	var threats []Threat
	for _, img := range images {
		combined := strings.ToLower(img.Alt + " " + img.Src)

		matched := ""
		for _, keyword := range set.SecurityBadgeKeywords() {
			if strings.Contains(combined, keyword) {
				matched = keyword
				break
			}
		}
		if matched == "" {
			continue
		}

		host := resolveHost(page, img.Src)
		if set.IsTrustedBadgeHost(host) {
			continue
		}

		if host == "" {
			host = "unknown host"
		}
		threats = append(threats, newContentThreat(
			KindFakeSecurityBadge,
			SeverityMedium,
			fmt.Sprintf("Security badge (%s) served from %s instead of a known vendor", matched, host),
		))
	}
	return threats
}

// detectHiddenElements flags invisible iframes and invisible containers holding scripts
func detectHiddenElements(elements []Element) []Threat {
	var threats []Threat
	for _, el := range elements {
		tag := strings.ToLower(el.Tag)
		if !hiddenElementTags[tag] || !isInvisible(el) {
			continue
		}

		if tag != "iframe" && !strings.Contains(strings.ToLower(el.InnerHTML), "<script") {
			continue
		}

		threats = append(threats, newContentThreat(
			KindHiddenMaliciousElement,
			SeverityMedium,
			fmt.Sprintf("Hidden %s element with executable content", tag),
		))
	}
	return threats
}

// isInvisible applies the computed-style and bounding-box visibility rules
func isInvisible(el Element) bool {
	if strings.EqualFold(strings.TrimSpace(el.Display), "none") {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(el.Visibility), "hidden") {
		return true
	}
	if opacity, err := strconv.ParseFloat(strings.TrimSpace(el.Opacity), 64); err == nil && opacity == 0 {
		return true
	}
	if el.Width != nil && *el.Width < MinVisibleElementSize {
		return true
	}
	if el.Height != nil && *el.Height < MinVisibleElementSize {
		return true
	}
	return false
}

// detectFraming flags pages embedded by a foreign or unknown parent
func detectFraming(page *URL, frame *FrameInfo) []Threat {
	if frame == nil || !frame.Framed {
		return nil
	}

	parent := canonicalOrigin(frame.ParentOrigin)
	if parent == "" || page == nil {
		return []Threat{newContentThreat(
			KindPotentialClickjacking,
			SeverityMedium,
			"Page is embedded in a frame whose origin cannot be verified",
		)}
	}

	if parent != page.Origin() {
		return []Threat{newContentThreat(
			KindCrossOriginFraming,
			SeverityMedium,
			fmt.Sprintf("Page is embedded by a different origin: %s", parent),
		)}
	}

	return nil
}

// detectMiningMarkup emits one threat per miner identifier present in the markup
func detectMiningMarkup(markup string, set *patterns.Set) []Threat {
	if markup == "" {
		return nil
	}

	lower := strings.ToLower(markup)
	var threats []Threat
	for _, indicator := range set.MiningIndicators() {
		if strings.Contains(lower, indicator) {
			threats = append(threats, newContentThreat(
				KindCryptominingScript,
				SeverityMedium,
				fmt.Sprintf("Cryptomining script identifier found: %s", indicator),
			))
		}
	}
	return threats
}
