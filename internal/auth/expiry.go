package auth

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 36525 * day / 100
)

var expiryPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(ms|s|m|h|d|w|y)?$`)

var expiryUnits = map[string]time.Duration{
	"ms": time.Millisecond,
	"s":  time.Second,
	"":   time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  day,
	"w":  week,
	"y":  year,
}

// ParseExpiry parses token lifetimes such as "7d", "12h", "30m", "1.5h" or "3600".
// A bare number is seconds. Units are case-insensitive.
func ParseExpiry(s string) (time.Duration, error) {
	m := expiryPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid expiry %q: expected a number with optional unit ms, s, m, h, d, w or y", s)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}

	d := n * float64(expiryUnits[m[2]])
	if d <= 0 || d > math.MaxInt64 {
		return 0, fmt.Errorf("invalid expiry %q: out of range", s)
	}
	return time.Duration(d), nil
}
