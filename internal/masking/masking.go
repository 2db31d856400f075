// Package masking derives the PII-safe projections of reviewer fields. Every
// function is deterministic and one-way.
package masking

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const (
	maskToken = "***"

	// RedactedIP replaces any IP value that cannot be parsed.
	RedactedIP = "REDACTED"
)

// EmailHash returns the hex SHA-256 of the trimmed, lowercased email, or nil when
// the email is absent.
func EmailHash(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(normalized))
	out := hex.EncodeToString(sum[:])
	return &out
}

// RedactName keeps the first character of the trimmed name followed by a mask.
func RedactName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	out := string(first) + maskToken
	return &out
}

// RedactIP zeroes the host part of an address: the last octet of an IPv4 address or
// the last group of an IPv6 address. Unparsable input yields RedactedIP.
func RedactIP(ip *string) *string {
	if ip == nil {
		return nil
	}
	value := strings.TrimSpace(*ip)
	if value == "" {
		return nil
	}

	out := RedactedIP
	if addr, err := netip.ParseAddr(value); err == nil {
		if addr.Is4() {
			parts := strings.Split(value, ".")
			out = strings.Join(append(parts[:3], "0"), ".")
		} else {
			parts := strings.Split(value, ":")
			parts[len(parts)-1] = "0000"
			out = strings.Join(parts, ":")
		}
	}
	return &out
}
