package patterns

// Tracker describes a known tracking vendor and the hosts it serves from
type Tracker struct {
	Name     string   `yaml:"name" json:"name"`
	Category string   `yaml:"category" json:"category"` // Analytics, Advertising, Social, etc.
	Domains  []string `yaml:"domains" json:"domains"`
}

// ScriptPattern is a named regular expression matched against inline script bodies
type ScriptPattern struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// File is the on-disk shape of a pattern set.
// Every list is optional; an empty list keeps the built-in default.
type File struct {
	MaliciousDomains         []string        `yaml:"malicious_domains"`
	Trackers                 []Tracker       `yaml:"trackers"`
	TrackerPatterns          []string        `yaml:"tracker_patterns"`
	PhishingKeywords         []string        `yaml:"phishing_keywords"`
	SuspiciousTLDs           []string        `yaml:"suspicious_tlds"`
	URLShorteners            []string        `yaml:"url_shorteners"`
	WatchedBrands            []string        `yaml:"watched_brands"`
	SuspiciousPathPatterns   []string        `yaml:"suspicious_path_patterns"`
	CryptominingIndicators   []string        `yaml:"cryptomining_indicators"`
	SuspiciousScriptPatterns []ScriptPattern `yaml:"suspicious_script_patterns"`
	SecurityBadgeKeywords    []string        `yaml:"security_badge_keywords"`
	TrustedBadgeDomains      []string        `yaml:"trusted_badge_domains"`
	RandomDomainPattern      string          `yaml:"random_domain_pattern"`
}

// Defaults returns the built-in pattern lists
func Defaults() File {
	return File{
		MaliciousDomains: []string{
			"malware-example.com",
			"phishing-site.net",
			"fake-bank-login.com",
			"free-prizes-winner.xyz",
			"secure-update-required.com",
			"coinhive.com",
			"crypto-loot.com",
		},
		Trackers: defaultTrackers(),
		TrackerPatterns: []string{
			`(^|[.-])analytics[.-]`,
			`adsystem`,
			`syndication`,
			`(^|[.-])telemetry[.-]`,
			`doubleclick`,
			`(^|\.)(pixel|tracking|tracker)\.`,
		},
		PhishingKeywords: []string{
			"verify your account",
			"account suspended",
			"confirm your identity",
			"unusual activity",
			"update your payment",
			"urgent action required",
			"your account will be closed",
			"click here to verify",
			"security alert",
			"confirm your password",
			"you have won",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq",
			".xyz", ".top", ".click", ".loan", ".work",
			".download", ".zip", ".review", ".country",
		},
		URLShorteners: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly",
			"is.gd", "buff.ly", "adf.ly", "bit.do", "cutt.ly",
			"rebrand.ly", "shorturl.at",
		},
		WatchedBrands: []string{
			"paypal", "microsoft", "google", "facebook", "amazon", "apple",
		},
		SuspiciousPathPatterns: []string{
			`login.*secure|secure.*login`,
			`verify.*account|account.*verify`,
			`update.*payment|payment.*update`,
			`suspended`,
			`confirm.*identity|identity.*confirm`,
		},
		CryptominingIndicators: []string{
			"coinhive", "coin-hive", "cryptonight", "cryptoloot",
			"crypto-loot", "jsecoin", "webminepool", "coinimp",
			"deepminer", "authedmine", "monerominer",
		},
		SuspiciousScriptPatterns: []ScriptPattern{
			{Name: "eval", Pattern: `\beval\s*\(`},
			{Name: "Function constructor", Pattern: `new\s+Function\s*\(`},
			{Name: "document.write", Pattern: `document\.write(ln)?\s*\(`},
			{Name: "HTML injection", Pattern: `\.(inner|outer)HTML\s*=`},
			{Name: "string timer", Pattern: `set(Timeout|Interval)\s*\(\s*["']`},
			{Name: "base64 decoding", Pattern: `\batob\s*\(`},
			{Name: "char code obfuscation", Pattern: `String\.fromCharCode\s*\(`},
			{Name: "unescape", Pattern: `\bunescape\s*\(`},
			{Name: "cryptominer", Pattern: `(?i)(coinhive|cryptonight|miner\.start\s*\()`},
			{Name: "keylogger", Pattern: `(?i)(key_?logg?er|keystrokes?.{0,40}(send|post|beacon|fetch))`},
		},
		SecurityBadgeKeywords: []string{
			"secure", "security", "verified", "ssl", "norton",
			"mcafee", "trust", "certified", "safe",
		},
		TrustedBadgeDomains: []string{
			"digicert.com", "norton.com", "nortonlifelock.com", "mcafee.com",
			"mcafeesecure.com", "trustedsite.com", "sectigo.com", "comodo.com",
			"comodoca.com", "geotrust.com", "thawte.com", "globalsign.com",
			"entrust.net", "letsencrypt.org", "symantec.com", "verisign.com",
			"trustwave.com", "godaddy.com", "trustpilot.com", "bbb.org",
		},
		RandomDomainPattern: `^[a-z0-9]{20,}\.`,
	}
}

// defaultTrackers is the built-in tracker vendor catalog
func defaultTrackers() []Tracker {
	return []Tracker{
		{
			Name:     "Google Analytics",
			Category: "Analytics",
			Domains:  []string{"google-analytics.com", "analytics.google.com"},
		},
		{
			Name:     "Google Tag Manager",
			Category: "Tag Management",
			Domains:  []string{"googletagmanager.com"},
		},
		{
			Name:     "DoubleClick",
			Category: "Advertising",
			Domains:  []string{"doubleclick.net", "googleadservices.com", "googlesyndication.com"},
		},
		{
			Name:     "Facebook Pixel",
			Category: "Advertising",
			Domains:  []string{"connect.facebook.net", "pixel.facebook.com"},
		},
		{
			Name:     "Hotjar",
			Category: "Analytics",
			Domains:  []string{"hotjar.com", "hotjar.io"},
		},
		{
			Name:     "Mixpanel",
			Category: "Analytics",
			Domains:  []string{"mxpnl.com", "api.mixpanel.com"},
		},
		{
			Name:     "Segment",
			Category: "Analytics",
			Domains:  []string{"cdn.segment.com", "api.segment.io"},
		},
		{
			Name:     "LinkedIn Insight Tag",
			Category: "Advertising",
			Domains:  []string{"snap.licdn.com", "px.ads.linkedin.com"},
		},
		{
			Name:     "Twitter Analytics",
			Category: "Social",
			Domains:  []string{"static.ads-twitter.com", "analytics.twitter.com"},
		},
		{
			Name:     "Adobe Analytics",
			Category: "Analytics",
			Domains:  []string{"omtrdc.net", "2o7.net", "demdex.net"},
		},
		{
			Name:     "Criteo",
			Category: "Advertising",
			Domains:  []string{"criteo.com", "criteo.net"},
		},
		{
			Name:     "Taboola",
			Category: "Advertising",
			Domains:  []string{"taboola.com"},
		},
		{
			Name:     "Outbrain",
			Category: "Advertising",
			Domains:  []string{"outbrain.com"},
		},
		{
			Name:     "Scorecard Research",
			Category: "Analytics",
			Domains:  []string{"scorecardresearch.com"},
		},
		{
			Name:     "Quantcast",
			Category: "Advertising",
			Domains:  []string{"quantserve.com", "quantcount.com"},
		},
		{
			Name:     "Amazon Advertising",
			Category: "Advertising",
			Domains:  []string{"amazon-adsystem.com"},
		},
	}
}
