package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

// substitutions maps a letter to the lookalike character phishers swap in
var substitutions = map[rune]rune{
	'o': '0',
	'i': '1',
	'l': '1',
	'e': '3',
	'a': '@',
	's': '$',
}

// maxSubstitutablePositions bounds brand variant generation (2^n - 1 variants)
const maxSubstitutablePositions = 10

// Brand is a watched brand token with its precomputed lookalike spellings
type Brand struct {
	Token    string
	Variants []string
}

// TrackerInfo identifies the vendor behind a tracker domain
type TrackerInfo struct {
	Name     string
	Category string
}

// NamedPattern is a compiled ScriptPattern
type NamedPattern struct {
	Name string
	Re   *regexp.Regexp
}

// Set is a compiled, read-only pattern set.
// A Set is never modified after Compile returns; updates build a new Set.
type Set struct {
	Version uint64

	maliciousDomains    map[string]struct{}
	trackerDomains      map[string]TrackerInfo
	trackerPatterns     []*regexp.Regexp
	phishingKeywords    []string
	suspiciousTLDs      []string
	shorteners          map[string]struct{}
	brands              []Brand
	pathPatterns        []*regexp.Regexp
	miningIndicators    []string
	scriptPatterns      []NamedPattern
	badgeKeywords       []string
	trustedBadgeDomains map[string]struct{}
	randomDomain        *regexp.Regexp
}

// Compile validates and indexes a pattern file
func Compile(f File) (*Set, error) {
	s := &Set{
		maliciousDomains:    toDomainSet(f.MaliciousDomains),
		trackerDomains:      make(map[string]TrackerInfo),
		phishingKeywords:    lowerAll(f.PhishingKeywords),
		shorteners:          toDomainSet(f.URLShorteners),
		miningIndicators:    lowerAll(f.CryptominingIndicators),
		badgeKeywords:       lowerAll(f.SecurityBadgeKeywords),
		trustedBadgeDomains: toDomainSet(f.TrustedBadgeDomains),
	}

	for _, tracker := range f.Trackers {
		for _, domain := range tracker.Domains {
			domain = normalizeDomain(domain)
			if domain == "" {
				continue
			}
			s.trackerDomains[domain] = TrackerInfo{Name: tracker.Name, Category: tracker.Category}
		}
	}

	for _, tld := range f.SuspiciousTLDs {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if tld == "" {
			continue
		}
		if !strings.HasPrefix(tld, ".") {
			tld = "." + tld
		}
		s.suspiciousTLDs = append(s.suspiciousTLDs, tld)
	}

	for _, brand := range f.WatchedBrands {
		token := strings.ToLower(strings.TrimSpace(brand))
		if token == "" {
			continue
		}
		s.brands = append(s.brands, Brand{Token: token, Variants: brandVariants(token)})
	}

	var err error
	if s.trackerPatterns, err = compileAll("tracker pattern", f.TrackerPatterns, false); err != nil {
		return nil, err
	}
	if s.pathPatterns, err = compileAll("path pattern", f.SuspiciousPathPatterns, true); err != nil {
		return nil, err
	}

	for _, sp := range f.SuspiciousScriptPatterns {
		re, err := regexp.Compile(sp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("script pattern %q: %w", sp.Name, err)
		}
		name := sp.Name
		if name == "" {
			name = sp.Pattern
		}
		s.scriptPatterns = append(s.scriptPatterns, NamedPattern{Name: name, Re: re})
	}

	if f.RandomDomainPattern != "" {
		if s.randomDomain, err = regexp.Compile(f.RandomDomainPattern); err != nil {
			return nil, fmt.Errorf("random domain pattern: %w", err)
		}
	}

	return s, nil
}

// MustCompileDefaults compiles the built-in lists and panics on error
func MustCompileDefaults() *Set {
	s, err := Compile(Defaults())
	if err != nil {
		panic(err)
	}
	return s
}

// IsMaliciousDomain reports whether host or one of its parent domains is blocklisted
func (s *Set) IsMaliciousDomain(host string) bool {
	_, ok := lookupDomain(s.maliciousDomains, host)
	return ok
}

// TrackerFor returns the vendor for host when host belongs to a known tracker domain
func (s *Set) TrackerFor(host string) (TrackerInfo, bool) {
	for h := host; h != ""; h = parentDomain(h) {
		if info, ok := s.trackerDomains[h]; ok {
			return info, true
		}
	}
	return TrackerInfo{}, false
}

// MatchesTrackerPattern reports whether host matches a tracker regex
func (s *Set) MatchesTrackerPattern(host string) bool {
	for _, re := range s.trackerPatterns {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// SuspiciousTLD returns the suspicious TLD host ends with, if any
func (s *Set) SuspiciousTLD(host string) (string, bool) {
	for _, tld := range s.suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return tld, true
		}
	}
	return "", false
}

// Shortener returns the shortener domain host belongs to, if any
func (s *Set) Shortener(host string) (string, bool) {
	return lookupDomain(s.shorteners, host)
}

// IsTrustedBadgeHost reports whether host belongs to a certificate authority or security vendor
func (s *Set) IsTrustedBadgeHost(host string) bool {
	_, ok := lookupDomain(s.trustedBadgeDomains, host)
	return ok
}

// LooksRandom reports whether host has a long machine-generated looking label
func (s *Set) LooksRandom(host string) bool {
	return s.randomDomain != nil && s.randomDomain.MatchString(host)
}

// MatchSuspiciousPath reports whether the lower-cased path matches a suspicious phrase pattern
func (s *Set) MatchSuspiciousPath(path string) bool {
	for _, re := range s.pathPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// MatchScript returns the name of the first dangerous pattern found in body
func (s *Set) MatchScript(body string) (string, bool) {
	for _, p := range s.scriptPatterns {
		if p.Re.MatchString(body) {
			return p.Name, true
		}
	}
	return "", false
}

// Brands returns the watched brands with their lookalike variants
func (s *Set) Brands() []Brand { return s.brands }

// PhishingKeywords returns the lower-cased phishing phrases
func (s *Set) PhishingKeywords() []string { return s.phishingKeywords }

// MiningIndicators returns the lower-cased miner script identifiers
func (s *Set) MiningIndicators() []string { return s.miningIndicators }

// SecurityBadgeKeywords returns the lower-cased badge keywords
func (s *Set) SecurityBadgeKeywords() []string { return s.badgeKeywords }

// Summary reports list sizes, used by the API to show what is loaded
func (s *Set) Summary() map[string]int {
	return map[string]int{
		"malicious_domains":          len(s.maliciousDomains),
		"tracker_domains":            len(s.trackerDomains),
		"tracker_patterns":           len(s.trackerPatterns),
		"phishing_keywords":          len(s.phishingKeywords),
		"suspicious_tlds":            len(s.suspiciousTLDs),
		"url_shorteners":             len(s.shorteners),
		"watched_brands":             len(s.brands),
		"suspicious_path_patterns":   len(s.pathPatterns),
		"cryptomining_indicators":    len(s.miningIndicators),
		"suspicious_script_patterns": len(s.scriptPatterns),
		"security_badge_keywords":    len(s.badgeKeywords),
		"trusted_badge_domains":      len(s.trustedBadgeDomains),
	}
}

// brandVariants returns every spelling of token with at least one letter
// replaced by its lookalike, e.g. "paypal" -> "paypa1", "p@ypal", ...
func brandVariants(token string) []string {
	runes := []rune(token)

	var positions []int
	for i, r := range runes {
		if _, ok := substitutions[r]; ok {
			positions = append(positions, i)
		}
	}
	if len(positions) > maxSubstitutablePositions {
		positions = positions[:maxSubstitutablePositions]
	}

	variants := make([]string, 0, (1<<len(positions))-1)
	for mask := 1; mask < 1<<len(positions); mask++ {
		v := make([]rune, len(runes))
		copy(v, runes)
		for bit, pos := range positions {
			if mask&(1<<bit) != 0 {
				v[pos] = substitutions[v[pos]]
			}
		}
		variants = append(variants, string(v))
	}
	return variants
}

func compileAll(kind string, exprs []string, caseInsensitive bool) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		if caseInsensitive && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", kind, expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func toDomainSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d = normalizeDomain(d); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeDomain(d string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
}

// lookupDomain walks host and its parent domains looking for a set member
func lookupDomain(set map[string]struct{}, host string) (string, bool) {
	for h := host; h != ""; h = parentDomain(h) {
		if _, ok := set[h]; ok {
			return h, true
		}
	}
	return "", false
}

// parentDomain strips the leftmost label, returning "" at the top
func parentDomain(host string) string {
	i := strings.IndexByte(host, '.')
	if i < 0 {
		return ""
	}
	return host[i+1:]
}
