package dataquality

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	ipv4OctetPattern = regexp.MustCompile(`^(25[0-5]|2[0-4]\d|[01]?\d?\d)$`)
	ipv6Pattern      = regexp.MustCompile(`^([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}$`)
)

// ValidEmail reports whether s has the user@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidIP reports whether s is a dotted-quad IPv4 address or has the loose
// colon-group IPv6 shape.
func ValidIP(s string) bool {
	return validIPv4(s) || ipv6Pattern.MatchString(s)
}

func validIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if !ipv4OctetPattern.MatchString(part) {
			return false
		}
	}
	return true
}

// CoerceRating parses a rating cell. Decimal strings are truncated toward zero, so
// "3.0" and "3.9" both give 3. Empty or non-numeric values give nil.
func CoerceRating(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	n := int(math.Trunc(f))
	return &n
}

// RatingAllowed reports whether the rating is one of 1..5.
func RatingAllowed(rating *int) bool {
	return rating != nil && *rating >= 1 && *rating <= 5
}
