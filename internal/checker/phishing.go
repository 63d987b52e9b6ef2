package checker

import (
	"fmt"
	"strings"

	"github.com/olegrjumin/threatlens/internal/patterns"
)

// DetectPhishing runs the brand, TLD, shortener and punycode checks against u.
// Any firing check yields one phishing threat with a fixed score; when several
// fire, the reason of the last one is kept.
func DetectPhishing(u *URL, set *patterns.Set) *Threat {
	reason := ""

	if brand, ok := impersonatedBrand(u.Host, set.Brands()); ok {
		reason = fmt.Sprintf("Possible impersonation of %s using character substitution", brand)
	}

	if tld, ok := set.SuspiciousTLD(u.Host); ok {
		reason = fmt.Sprintf("Suspicious top-level domain %s", tld)
	}

	if shortener, ok := set.Shortener(u.Host); ok {
		reason = fmt.Sprintf("URL shortener %s hides real destination", shortener)
	}

	if hasPunycodeLabel(u.ASCIIHost) {
		reason = "Internationalized domain may impersonate a trusted site"
	}

	if reason == "" {
		return nil
	}

	return &Threat{
		Kind:        KindPhishing,
		Severity:    SeverityHigh,
		Description: reason,
		Score:       ScorePhishing,
	}
}

// impersonatedBrand returns the first watched brand host imitates.
// Hosts containing "{brand}.com" are the brand's own and never match.
func impersonatedBrand(host string, brands []patterns.Brand) (string, bool) {
	for _, brand := range brands {
		if strings.Contains(host, brand.Token+".com") {
			continue
		}
		for _, variant := range brand.Variants {
			if strings.Contains(host, variant) {
				return brand.Token, true
			}
		}
	}
	return "", false
}

func hasPunycodeLabel(asciiHost string) bool {
	for _, label := range strings.Split(asciiHost, ".") {
		if strings.HasPrefix(label, "xn--") {
			return true
		}
	}
	return false
}

// LookupMaliciousDomain checks host against the blocklist
func LookupMaliciousDomain(u *URL, set *patterns.Set) *Threat {
	if !set.IsMaliciousDomain(u.Host) {
		return nil
	}

	return &Threat{
		Kind:        KindMaliciousDomain,
		Severity:    SeverityHigh,
		Description: fmt.Sprintf("Known malicious domain: %s", u.Host),
		Score:       ScoreMaliciousDomain,
	}
}
