package patterns

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyFile is returned when a pattern file holds no data at all
var ErrEmptyFile = errors.New("pattern file is empty")

// Parse decodes YAML pattern data on top of the built-in defaults.
// Each list present in data replaces the matching default list.
func Parse(data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, ErrEmptyFile
	}

	var override File
	if err := yaml.Unmarshal(data, &override); err != nil {
		return File{}, fmt.Errorf("decode patterns: %w", err)
	}

	return merge(Defaults(), override), nil
}

// Load reads and compiles a YAML pattern file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse patterns %s: %w", path, err)
	}

	return Compile(f)
}

// merge replaces every base list that has a non-empty counterpart in override
func merge(base, override File) File {
	pick := func(b, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return b
	}

	base.MaliciousDomains = pick(base.MaliciousDomains, override.MaliciousDomains)
	base.TrackerPatterns = pick(base.TrackerPatterns, override.TrackerPatterns)
	base.PhishingKeywords = pick(base.PhishingKeywords, override.PhishingKeywords)
	base.SuspiciousTLDs = pick(base.SuspiciousTLDs, override.SuspiciousTLDs)
	base.URLShorteners = pick(base.URLShorteners, override.URLShorteners)
	base.WatchedBrands = pick(base.WatchedBrands, override.WatchedBrands)
	base.SuspiciousPathPatterns = pick(base.SuspiciousPathPatterns, override.SuspiciousPathPatterns)
	base.CryptominingIndicators = pick(base.CryptominingIndicators, override.CryptominingIndicators)
	base.SecurityBadgeKeywords = pick(base.SecurityBadgeKeywords, override.SecurityBadgeKeywords)
	base.TrustedBadgeDomains = pick(base.TrustedBadgeDomains, override.TrustedBadgeDomains)

	if len(override.Trackers) > 0 {
		base.Trackers = override.Trackers
	}
	if len(override.SuspiciousScriptPatterns) > 0 {
		base.SuspiciousScriptPatterns = override.SuspiciousScriptPatterns
	}
	if override.RandomDomainPattern != "" {
		base.RandomDomainPattern = override.RandomDomainPattern
	}

	return base
}
