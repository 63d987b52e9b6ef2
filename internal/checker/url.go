package checker

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// URL is a parsed, normalized URL. Immutable once parsed.
type URL struct {
	Raw       string `json:"raw"`
	Scheme    string `json:"scheme"`
	Host      string `json:"host"`       // lower-cased, no port
	ASCIIHost string `json:"ascii_host"` // IDNA form of Host
	Domain    string `json:"domain"`     // registrable domain (eTLD+1)
	Port      string `json:"port,omitempty"`
	Path      string `json:"path"`
	Query     string `json:"query,omitempty"`
	Length    int    `json:"length"`
}

// ParseURL parses and normalizes raw.
// Only http and https URLs with a host are accepted.
func ParseURL(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, raw)
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return nil, fmt.Errorf("%w: empty host in %q", ErrInvalidURL, raw)
	}

	u := &URL{
		Raw:       raw,
		Scheme:    scheme,
		Host:      host,
		ASCIIHost: asciiHost(host),
		Port:      parsed.Port(),
		Path:      parsed.EscapedPath(),
		Query:     parsed.RawQuery,
		Length:    len(raw),
	}
	u.Domain = registrableDomain(u.ASCIIHost)

	return u, nil
}

// IsIPLiteral reports whether the host is an IPv4 address
func (u *URL) IsIPLiteral() bool {
	return ipv4Pattern.MatchString(u.Host)
}

// Labels returns the dot-separated host labels
func (u *URL) Labels() []string {
	return strings.Split(u.Host, ".")
}

// IsHTTPS reports whether the URL uses TLS
func (u *URL) IsHTTPS() bool {
	return u.Scheme == "https"
}

// defaultPorts are left out of serialized origins
var defaultPorts = map[string]string{"http": "80", "https": "443"}

// Origin returns scheme://host[:port], omitting the scheme's default port
func (u *URL) Origin() string {
	return serializeOrigin(u.Scheme, u.ASCIIHost, u.Port)
}

func serializeOrigin(scheme, host, port string) string {
	if port == "" || defaultPorts[scheme] == port {
		return scheme + "://" + host
	}
	return scheme + "://" + host + ":" + port
}

// canonicalOrigin brings an origin reported by the host into the form Origin
// produces. The opaque "null" origin and empty input map to "". Input that is
// not scheme://host is only lower-cased, so it never equals a page origin.
func canonicalOrigin(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "null" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimSuffix(raw, "/")
	}

	host := strings.TrimSuffix(parsed.Hostname(), ".")
	return serializeOrigin(parsed.Scheme, asciiHost(host), parsed.Port())
}

// asciiHost converts an internationalized host to its punycode form
func asciiHost(host string) string {
	if converted, err := idna.Lookup.ToASCII(host); err == nil && converted != "" {
		return converted
	}
	return host
}

// registrableDomain returns the eTLD+1 of host, or host itself for IPs and
// hosts without a public suffix
func registrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

// hostOf extracts the lower-cased hostname of any absolute URL (ws, wss and
// other schemes included). Returns "" when there is none.
func hostOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
}

// resolveHost returns the host ref points to when resolved against base.
// Relative references resolve to base's host.
func resolveHost(base *URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if base == nil {
			return ""
		}
		return base.Host
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.Host == "" && base != nil {
		return base.Host
	}
	return strings.TrimSuffix(strings.ToLower(refURL.Hostname()), ".")
}
