package domainutil

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// emailRe matches "local@host.tld" without whitespace. Deliberately loose:
// the ACME server is the final authority on contact addresses.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// labelRe matches a single DNS label (letters, digits, inner hyphens, max 63).
var labelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Normalize canonicalizes a requested certificate name.
// Rules:
//   - lowercase, trim spaces, strip trailing dot
//   - strip a port suffix (example.com:443)
//   - reject IPs, empty strings and malformed labels
//   - a single leading "*." is the only place a wildcard may appear
func Normalize(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("domain must not be empty")
	}

	host = strings.ToLower(host)
	host = strings.TrimSuffix(host, ".")

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return "", fmt.Errorf("domain must not be empty after normalization")
	}

	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("IP address is not allowed as domain: %s", host)
	}

	bare := host
	if strings.HasPrefix(bare, "*.") {
		bare = bare[2:]
	}
	if strings.Contains(bare, "*") {
		return "", fmt.Errorf("wildcard is only allowed as a leading label: %s", host)
	}

	labels := strings.Split(bare, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("domain must contain at least one dot: %s", host)
	}
	for _, label := range labels {
		if !labelRe.MatchString(label) {
			return "", fmt.Errorf("domain contains invalid label %q: %s", label, host)
		}
	}

	return host, nil
}

// IsWildcard reports whether the name requests a wildcard certificate.
// Every wildcard decision in the codebase must go through this predicate.
func IsWildcard(domain string) bool {
	return strings.HasPrefix(domain, "*.")
}

// Base strips the wildcard label, returning the apex the wildcard covers.
// Non-wildcard names are returned unchanged.
func Base(domain string) string {
	return strings.TrimPrefix(domain, "*.")
}

// OrderIdentifiers returns the DNS identifiers an ACME order for the name
// must carry. A wildcard certificate must prove control of both the apex and
// the wildcard name, so it always expands to exactly two identifiers.
func OrderIdentifiers(domain string) []string {
	if IsWildcard(domain) {
		return []string{Base(domain), domain}
	}
	return []string{domain}
}

// ValidateEmail checks the shape of a contact address.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}
