package domain

import (
	"strings"
)

// NormalizeIdentifier canonicalizes an email or phone identifier so that the
// same string is produced on both the enroll (write) and verify (read)
// paths. Emails are lower-cased and trimmed; phones keep digits and a
// leading plus only. Oracle labels and store lookups always go through here.
func NormalizeIdentifier(identifier string) string {
	s := strings.TrimSpace(identifier)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "@") {
		return strings.ToLower(s)
	}

	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameIdentifier compares two identifiers after normalization.
func SameIdentifier(a, b string) bool {
	return NormalizeIdentifier(a) == NormalizeIdentifier(b) && NormalizeIdentifier(a) != ""
}

// MaskIdentifier hides most of an identifier for display to another user.
// Emails keep the first character of the local part and the full domain
// ("a**@x.com"); phones keep the last two digits ("****21"). The star run is
// fixed-width so the mask does not reveal length. The full conflicting
// identifier never leaves the engine.
func MaskIdentifier(identifier string) string {
	s := NormalizeIdentifier(identifier)
	if s == "" {
		return ""
	}

	if at := strings.Index(s, "@"); at > 0 {
		return s[:1] + "**" + s[at:]
	}

	if len(s) <= 2 {
		return "****"
	}
	return "****" + s[len(s)-2:]
}
