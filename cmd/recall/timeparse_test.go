package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFilterYesterdayAndToday(t *testing.T) {
	now := time.Now().UTC()

	y, err := parseTimeFilter("yesterday")
	require.NoError(t, err)
	assert.WithinDuration(t, now.AddDate(0, 0, -1), y, time.Minute)

	today, err := parseTimeFilter("Today")
	require.NoError(t, err)
	assert.WithinDuration(t, now, today, time.Minute)
}

func TestParseTimeFilterRelative(t *testing.T) {
	cases := []struct {
		in       string
		expected time.Duration
	}{
		{"5 minutes ago", 5 * time.Minute},
		{"1 hour ago", time.Hour},
		{"2 days ago", 2 * 24 * time.Hour},
		{"1 week ago", 7 * 24 * time.Hour},
	}
	now := time.Now().UTC()
	for _, c := range cases {
		got, err := parseTimeFilter(c.in)
		require.NoError(t, err, c.in)
		assert.WithinDuration(t, now.Add(-c.expected), got, time.Minute, c.in)
	}
}

func TestParseTimeFilterMonthsAgo(t *testing.T) {
	now := time.Now().UTC()
	got, err := parseTimeFilter("1 month ago")
	require.NoError(t, err)
	assert.WithinDuration(t, now.AddDate(0, -1, 0), got, 24*time.Hour)
}

func TestParseTimeFilterISODate(t *testing.T) {
	got, err := parseTimeFilter("2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestParseTimeFilterRFC3339(t *testing.T) {
	got, err := parseTimeFilter("2025-12-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestParseTimeFilterRejectsGarbage(t *testing.T) {
	_, err := parseTimeFilter("not a time")
	assert.Error(t, err)
}

func TestParseTimeFilterRejectsUnknownUnit(t *testing.T) {
	_, err := parseTimeFilter("3 fortnights ago")
	assert.Error(t, err)
}

func TestParseTimeFilterRejectsEmpty(t *testing.T) {
	_, err := parseTimeFilter("")
	assert.Error(t, err)
}
