package main

import (
	"strings"
	"time"

	"github.com/zippoxer/recall/internal/model"
)

// messageJSON is the wire shape of a model.Message in every JSON envelope
// this CLI prints.
type messageJSON struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	ToolCalls []toolCallJSON `json:"tool_calls,omitempty"`
}

type toolCallJSON struct {
	Name       string          `json:"name"`
	Input      any             `json:"input,omitempty"`
	Status     string          `json:"status"`
	DurationMs *int64          `json:"duration_ms,omitempty"`
	Output     *toolOutputJSON `json:"output,omitempty"`
}

type toolOutputJSON struct {
	Content    string `json:"content"`
	Truncated  bool   `json:"truncated"`
	TotalBytes int    `json:"total_bytes"`
}

func toMessageJSON(m model.Message) messageJSON {
	out := messageJSON{
		Role:      m.Role.String(),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, toToolCallJSON(tc))
	}
	return out
}

func toToolCallJSON(tc model.ToolCall) toolCallJSON {
	out := toolCallJSON{
		Name:       tc.Name,
		Input:      tc.Input,
		Status:     tc.Status.String(),
		DurationMs: tc.DurationMs,
	}
	if tc.Output != nil {
		out.Output = &toolOutputJSON{
			Content:    tc.Output.Content,
			Truncated:  tc.Output.Truncated,
			TotalBytes: tc.Output.TotalBytes,
		}
	}
	return out
}

// searchResultJSON is one entry in the search subcommand's results array.
type searchResultJSON struct {
	SessionID        string        `json:"session_id"`
	Source           string        `json:"source"`
	Cwd              string        `json:"cwd"`
	Timestamp        time.Time     `json:"timestamp"`
	RelevantMessages []messageJSON `json:"relevant_messages"`
	ResumeCommand    string        `json:"resume_command"`
}

type searchOutput struct {
	Query   string             `json:"query"`
	Results []searchResultJSON `json:"results"`
}

// listSessionJSON is one entry in the list subcommand's sessions array.
type listSessionJSON struct {
	SessionID     string    `json:"session_id"`
	Source        string    `json:"source"`
	Cwd           string    `json:"cwd"`
	Timestamp     time.Time `json:"timestamp"`
	ResumeCommand string    `json:"resume_command"`
}

type listOutput struct {
	Sessions []listSessionJSON `json:"sessions"`
}

// readOutput is the JSON shape of the read subcommand: the resolved
// session's metadata plus the selector-narrowed slice of messages.
type readOutput struct {
	SessionID     string        `json:"session_id"`
	Source        string        `json:"source"`
	Cwd           string        `json:"cwd"`
	GitBranch     string        `json:"git_branch,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	ResumeCommand string        `json:"resume_command"`
	Messages      []messageJSON `json:"messages"`
}

func resumeCommandString(s *model.Session) string {
	cmd, args := s.ResumeCommand()
	if cmd == "" {
		return ""
	}
	return strings.TrimSpace(strings.Join(append([]string{cmd}, args...), " "))
}
