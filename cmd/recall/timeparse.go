package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseTimeFilter parses the human-friendly strings accepted by --since and
// --until: "yesterday", "today", "N unit[s] ago", ISO-8601, or a bare
// "YYYY-MM-DD" date. Case-insensitive. The core search/index packages never
// see raw time strings, only resolved time.Time bounds.
func parseTimeFilter(raw string) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	now := time.Now().UTC()
	switch s {
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "today":
		return now, nil
	}

	if strings.HasSuffix(s, " ago") {
		return parseRelative(strings.TrimSuffix(s, " ago"), now)
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %q (try '1 week ago', 'yesterday', or '2025-12-01')", raw)
}

// parseRelative parses the "N unit" half of an "N unit ago" string.
func parseRelative(body string, now time.Time) (time.Time, error) {
	parts := strings.Fields(body)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid relative time: %q", body)
	}

	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %q is not a number", parts[0])
	}

	unit := strings.TrimSuffix(parts[1], "s")
	switch unit {
	case "minute", "min":
		return now.Add(-time.Duration(n) * time.Minute), nil
	case "hour", "hr":
		return now.Add(-time.Duration(n) * time.Hour), nil
	case "day":
		return now.AddDate(0, 0, -int(n)), nil
	case "week", "wk":
		return now.AddDate(0, 0, -int(n)*7), nil
	case "month", "mo":
		return now.AddDate(0, -int(n), 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown time unit: %q (use minutes, hours, days, weeks, months)", parts[1])
	}
}
