package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zippoxer/recall/internal/model"
)

func TestNewToolOutputTruncatesLongContent(t *testing.T) {
	content := strings.Repeat("a", truncateHeadBytes) + strings.Repeat("b", 10_000) + strings.Repeat("c", truncateTailBytes)

	out := newToolOutput(content, false, false)
	assert.True(t, out.Truncated)
	assert.Equal(t, len(content), out.TotalBytes)
	assert.True(t, strings.HasPrefix(out.Content, strings.Repeat("a", truncateHeadBytes)))
	assert.True(t, strings.HasSuffix(out.Content, strings.Repeat("c", truncateTailBytes)))
	assert.Contains(t, out.Content, truncateMarker)
}

func TestNewToolOutputNeverTruncatesErrors(t *testing.T) {
	content := strings.Repeat("x", 100_000)
	out := newToolOutput(content, true, false)
	assert.False(t, out.Truncated)
	assert.Equal(t, content, out.Content)
}

func TestNewToolOutputRespectsDisableTruncation(t *testing.T) {
	content := strings.Repeat("x", 100_000)
	out := newToolOutput(content, false, true)
	assert.False(t, out.Truncated)
	assert.Equal(t, content, out.Content)
}

func TestNewToolOutputShortContentNeverTruncated(t *testing.T) {
	out := newToolOutput("short", false, false)
	assert.False(t, out.Truncated)
	assert.Equal(t, "short", out.Content)
}

func TestIsSystemReminderOnly(t *testing.T) {
	assert.True(t, isSystemReminderOnly("<system-reminder>\nfoo\n</system-reminder>"))
	assert.True(t, isSystemReminderOnly("  <system-reminder>foo</system-reminder>  "))
	assert.False(t, isSystemReminderOnly("<system-reminder>foo</system-reminder> and more"))
	assert.False(t, isSystemReminderOnly("plain text"))
}

func TestIsCommandExpansion(t *testing.T) {
	assert.True(t, isCommandExpansion("<command-message>clear</command-message>"))
	assert.True(t, isCommandExpansion("<command-name>clear</command-name>"))
	assert.False(t, isCommandExpansion("how do I clear the screen"))
}

func TestJoinConsecutiveMessages(t *testing.T) {
	t0 := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)
	t2 := t1.Add(time.Second)

	in := []model.Message{
		{Role: model.RoleUser, Content: "a", Timestamp: t0},
		{Role: model.RoleUser, Content: "b", Timestamp: t1},
		{Role: model.RoleAssistant, Content: "c", Timestamp: t2},
	}
	out := joinConsecutiveMessages(in)

	assert := assert.New(t)
	assert.Len(out, 2)
	assert.Equal("a\n\nb", out[0].Content)
	assert.Equal(t1, out[0].Timestamp)
	assert.Equal("c", out[1].Content)
}

func TestParseTimestampFormats(t *testing.T) {
	got := parseTimestamp("2026-01-30T10:00:00Z")
	assert.Equal(t, 2026, got.Year())

	got = parseTimestamp("2026-01-30T10:00:00.123456Z")
	assert.Equal(t, 2026, got.Year())

	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("not-a-timestamp").IsZero())

	got = parseTimestamp("1700000000")
	assert.Equal(t, int64(1700000000), got.Unix())
}

func TestSessionIDFromFilename(t *testing.T) {
	assert.Equal(t, "abc", sessionIDFromFilename("/some/dir/abc.jsonl"))
	assert.Equal(t, "ses_xyz", sessionIDFromFilename("/some/dir/ses_xyz.json"))
}
