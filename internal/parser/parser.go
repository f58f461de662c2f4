// Package parser normalises the four on-disk transcript formats into the
// common model.Session shape.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zippoxer/recall/internal/model"
)

// ErrUnknownFormat is returned by ParseSession when no registered parser
// claims a path.
var ErrUnknownFormat = errors.New("unknown session file format")

// Parser is the contract every source-specific normaliser implements.
type Parser interface {
	// CanParse reports whether this parser handles path, based purely on
	// its location (never its contents).
	CanParse(path string) bool

	// Parse reads path and returns a normalised Session. A file that opens
	// but yields zero messages is not an error: it returns a Session with
	// an empty Messages slice, and the caller (the indexer) skips it.
	Parse(path string, ctx ReadContext) (model.Session, error)
}

// ReadContext carries per-read parsing state: whether ToolOutput truncation
// is disabled for this read. Passed explicitly rather than held in a
// package-level flag so concurrent reads can't observe each other's
// setting.
type ReadContext struct {
	DisableTruncation bool
}

// registry lists parsers in dispatch order; the first whose CanParse
// matches wins.
var registry = []Parser{
	ClaudeParser{},
	CodexParser{},
	FactoryParser{},
	OpenCodeParser{},
}

// ParseSession dispatches path to the first matching parser.
func ParseSession(path string, ctx ReadContext) (model.Session, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			return p.Parse(path, ctx)
		}
	}
	return model.Session{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// joinConsecutiveMessages merges adjacent same-role messages, joining their
// content with a blank line and keeping the latest timestamp. Tool calls
// from merged messages are concatenated in order.
func joinConsecutiveMessages(messages []model.Message) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			last := &out[n-1]
			last.Content = last.Content + "\n\n" + m.Content
			if m.Timestamp.After(last.Timestamp) {
				last.Timestamp = m.Timestamp
			}
			last.ToolCalls = append(last.ToolCalls, m.ToolCalls...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// isSystemReminderOnly reports whether text, once trimmed, is exactly one
// <system-reminder>...</system-reminder> wrapper and nothing else.
func isSystemReminderOnly(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<system-reminder>") && strings.HasSuffix(t, "</system-reminder>")
}

// isCommandExpansion reports whether text is an internal slash-command
// expansion marker rather than real user input.
func isCommandExpansion(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<command-message>") || strings.HasPrefix(t, "<command-name>")
}

// resolveToolCalls walks a message's tool calls in order and attaches
// results from the results table, keyed by tool_use_id. Calls with no
// matching result remain ToolPending.
func resolveToolCalls(calls []model.ToolCall, results map[string]toolResult, disableTruncation bool) []model.ToolCall {
	for i := range calls {
		res, ok := results[calls[i].ToolUseID]
		if !ok {
			continue
		}
		status := model.ToolSuccess
		if res.isError {
			status = model.ToolError
		}
		calls[i].Status = status
		calls[i].Output = newToolOutput(res.content, res.isError, disableTruncation)
		if res.durationMs != nil {
			calls[i].DurationMs = res.durationMs
		}
	}
	return calls
}

// toolResult is a parsed tool_result block, collected into a side table
// keyed by tool_use_id while scanning a transcript.
type toolResult struct {
	content    string
	isError    bool
	durationMs *int64
}

const (
	truncateHeadBytes = 1024
	truncateTailBytes = 1024
	truncateMarker    = "\n... [truncated] ...\n"
)

// newToolOutput builds a ToolOutput, truncating content to the first and
// last 1 KiB (with a visible marker) unless truncation is disabled for this
// read or the result is an error. Errors are never truncated.
func newToolOutput(content string, isError, disableTruncation bool) *model.ToolOutput {
	total := len(content)
	if isError || disableTruncation || total <= truncateHeadBytes+truncateTailBytes+len(truncateMarker) {
		return &model.ToolOutput{Content: content, Truncated: false, TotalBytes: total}
	}

	head := content[:truncateHeadBytes]
	tail := content[total-truncateTailBytes:]
	return &model.ToolOutput{
		Content:    head + truncateMarker + tail,
		Truncated:  true,
		TotalBytes: total,
	}
}

// parseTimestamp parses the RFC3339 (with or without fractional seconds)
// timestamps all four source formats use, or a Unix seconds/milliseconds
// numeric string as a fallback. An unparseable or empty value yields the
// zero time, which joinConsecutiveMessages and session timestamp selection
// both treat as "no information", never as "epoch".
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if ms, err := parseInt(raw); err == nil {
		switch {
		case ms > 1e15: // microseconds
			return time.UnixMicro(ms).UTC()
		case ms > 1e12: // milliseconds
			return time.UnixMilli(ms).UTC()
		case ms > 0:
			return time.Unix(ms, 0).UTC()
		}
	}
	return time.Time{}
}

func parseInt(s string) (int64, error) {
	var n int64
	var neg bool
	if len(s) == 0 {
		return 0, fmt.Errorf("empty")
	}
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not numeric: %q", s)
		}
		n = n*10 + int64(r-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

// sessionIDFromFilename returns a path's filename with its extension
// stripped, used as a fallback session ID by sources that don't carry one
// in their own records.
func sessionIDFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
