// Package duration parses the short age strings accepted by "log --since":
// "12h", "7d", "4w" or "3m". A month counts as 30 days.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d+)([hdwm])$`)

var units = map[string]time.Duration{
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"m": 30 * 24 * time.Hour,
}

// Parse returns the duration described by s.
func Parse(s string) (time.Duration, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q (use 12h, 7d, 4w or 3m)", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(n) * units[m[2]], nil
}

// Cutoff returns the unix time s before now.
func Cutoff(s string, now time.Time) (int64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return now.Add(-d).Unix(), nil
}
