// Package timeutil parses and renders compact durations such as "1w2d".
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var (
	segment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	units   = map[string]time.Duration{
		"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
		"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
		"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": week, "wk": week, "wks": week, "week": week, "weeks": week,
	}
	labels = []struct {
		label string
		value time.Duration
	}{
		{"w", week},
		{"d", day},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
)

// ParseWindow parses a window like "4w", "3d" or "1w2d6h".
func ParseWindow(input string) (time.Duration, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		return 0, fmt.Errorf("empty duration")
	}
	var total time.Duration
	for len(remaining) > 0 {
		m := segment.FindStringSubmatch(remaining)
		if len(m) != 3 {
			return 0, fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", m[1], err)
		}
		unit, ok := units[m[2]]
		if !ok {
			return 0, fmt.Errorf("unsupported duration unit %q", m[2])
		}
		total += time.Duration(n) * unit
		remaining = remaining[len(m[0]):]
	}
	if total <= 0 {
		return 0, fmt.Errorf("duration must be greater than zero")
	}
	return total, nil
}

// FormatWindow renders d with week/day/hour/minute/second tokens.
func FormatWindow(d time.Duration) string {
	return Coarse(d, len(labels))
}

// Coarse renders at most the n most significant tokens of d, so that
// 2d5h17m with n=2 becomes "2d5h".
func Coarse(d time.Duration, n int) string {
	if d < time.Second || n <= 0 {
		return "0s"
	}
	var b strings.Builder
	used := 0
	for _, u := range labels {
		if used == n {
			break
		}
		if d < u.value {
			if used > 0 {
				used++
			}
			continue
		}
		count := d / u.value
		d -= count * u.value
		fmt.Fprintf(&b, "%d%s", count, u.label)
		used++
	}
	return b.String()
}
