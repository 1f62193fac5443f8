// Package normalize converts the raw text the site renders for ratings,
// fares, seat counts and times into typed values. Every function tolerates
// empty or malformed input: a value that cannot be parsed comes back as nil,
// never as zero and never as an error.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rating parses a rating string such as "4.67" or "New 3" into a float
// rounded to one decimal. Returns nil when no number can be recovered.
func Rating(raw string) *float64 {
	cleaned := keep(raw, "0123456789.")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	rounded := math.Round(v*10) / 10
	return &rounded
}

// Price parses a fare string such as "INR 1,234.5" or "₹349 only" into the
// canonical two-decimal form ("1234.50"). Already-canonical input passes
// through unchanged. Returns nil when no number can be recovered.
func Price(raw string) *string {
	cleaned := keep(raw, "0123456789.")
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	s := fmt.Sprintf("%.2f", v)
	return &s
}

// Seats parses a seat-availability string such as "23 Seats available" into
// an integer. Returns nil when the string contains no digits.
func Seats(raw string) *int {
	cleaned := keep(raw, "0123456789")
	if cleaned == "" {
		return nil
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &n
}

// FullTime extends a "HH:MM" clock string to "HH:MM:SS". Input already in
// the full form is returned as is; anything else comes back unchanged so the
// caller can surface it verbatim.
func FullTime(hhmm string) string {
	s := strings.TrimSpace(hhmm)
	switch strings.Count(s, ":") {
	case 1:
		return s + ":00"
	default:
		return s
	}
}

// Clock renders a number of seconds since midnight as "HH:MM:SS".
func Clock(seconds int) string {
	hours := seconds / 3600
	rem := seconds % 3600
	return fmt.Sprintf("%02d:%02d:%02d", hours, rem/60, rem%60)
}

// ParseClock parses a "HH:MM:SS" or "HH:MM" string into seconds since
// midnight. Returns -1 when the string is not a clock value.
func ParseClock(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return -1
	}
	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return -1
		}
		total += n * unit
	}
	return total
}

// keep returns raw with every rune outside the allowed set removed.
func keep(raw, allowed string) string {
	var b strings.Builder
	for _, r := range raw {
		if strings.ContainsRune(allowed, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
