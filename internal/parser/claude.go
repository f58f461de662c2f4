package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zippoxer/recall/internal/model"
)

// ClaudeParser normalises Claude Code's append-only JSONL transcripts
// under ~/.claude/projects/*/*.jsonl.
type ClaudeParser struct{}

func (ClaudeParser) CanParse(path string) bool {
	return strings.Contains(filepath.ToSlash(path), ".claude/projects")
}

type claudeLine struct {
	Type                      string         `json:"type"`
	Cwd                       string         `json:"cwd"`
	GitBranch                 string         `json:"gitBranch"`
	Timestamp                string         `json:"timestamp"`
	Message                   *claudeMessage `json:"message"`
	IsCompactSummary          bool           `json:"isCompactSummary"`
	IsVisibleInTranscriptOnly bool           `json:"isVisibleInTranscriptOnly"`
	IsMeta                    bool           `json:"isMeta"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type claudeBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

func (ClaudeParser) Parse(path string, ctx ReadContext) (model.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Session{}, err
	}
	defer f.Close()

	var (
		cwd, gitBranch string
		latest         time.Time
		messages       []model.Message
		results        = map[string]toolResult{}
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry claudeLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // malformed line: skip, keep going
		}

		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		if entry.IsCompactSummary || entry.IsVisibleInTranscriptOnly || entry.IsMeta {
			continue
		}

		if cwd == "" {
			cwd = entry.Cwd
		}
		if gitBranch == "" {
			gitBranch = entry.GitBranch
		}

		ts := parseTimestamp(entry.Timestamp)
		if ts.After(latest) {
			latest = ts
		}

		if entry.Message == nil {
			continue
		}

		var role model.Role
		switch entry.Message.Role {
		case "user":
			role = model.RoleUser
		case "assistant":
			role = model.RoleAssistant
		default:
			continue
		}

		text, calls := extractClaudeContent(entry.Message.Content, results)
		if role == model.RoleUser && isCommandExpansion(text) {
			continue
		}
		if text == "" && len(calls) == 0 {
			continue
		}
		if text != "" && isSystemReminderOnly(text) {
			continue
		}

		messages = append(messages, model.Message{
			Role:      role,
			Content:   text,
			Timestamp: ts,
			ToolCalls: calls,
		})
	}

	for i := range messages {
		messages[i].ToolCalls = resolveToolCalls(messages[i].ToolCalls, results, ctx.DisableTruncation)
	}

	if latest.IsZero() {
		latest = time.Now().UTC()
	}
	if cwd == "" {
		cwd = decodeClaudeProjectDir(path)
	}
	if cwd == "" {
		cwd = "."
	}

	return model.Session{
		ID:        sessionIDFromFilename(path),
		Source:    model.SourceClaude,
		FilePath:  path,
		Cwd:       cwd,
		GitBranch: gitBranch,
		Timestamp: latest,
		Messages:  joinConsecutiveMessages(messages),
	}, nil
}

// extractClaudeContent splits a message's content field into its plain-text
// (only "text" blocks) and tool_use blocks, and records any tool_result
// blocks it finds into results keyed by tool_use_id.
func extractClaudeContent(raw json.RawMessage, results map[string]toolResult) (string, []model.ToolCall) {
	// User messages: content is a plain string.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	// Assistant messages (and some user messages with tool results):
	// content is an array of typed blocks.
	var blocks []claudeBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", nil
	}

	var texts []string
	var calls []model.ToolCall
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				texts = append(texts, b.Text)
			}
		case "tool_use":
			calls = append(calls, model.ToolCall{
				ToolUseID: b.ID,
				Name:      b.Name,
				Input:     decodeInput(b.Input),
				Status:    model.ToolPending,
			})
		case "tool_result":
			results[b.ToolUseID] = toolResult{
				content: extractToolResultText(b.Content),
				isError: b.IsError,
			}
		// thinking and any other block kind contribute nothing to content.
		default:
		}
	}
	return strings.Join(texts, "\n"), calls
}

// extractToolResultText handles a tool_result's content field, which may be
// a plain string or an array of (typically "text") blocks.
func extractToolResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []claudeBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			texts = append(texts, b.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func decodeInput(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// decodeClaudeProjectDir recovers cwd from Claude Code's directory-name
// encoding of the project path when no record in the file carries it:
// "--" decodes to "/.", then remaining "-" decode to "/". Paths containing
// literal dashes are ambiguous; this is a fallback, not a guarantee.
func decodeClaudeProjectDir(sessionPath string) string {
	dir := filepath.Dir(sessionPath)
	name := filepath.Base(dir)
	if name == "" || !strings.HasPrefix(name, "-") {
		return ""
	}
	decoded := strings.ReplaceAll(name, "--", "/.")
	decoded = strings.ReplaceAll(decoded, "-", "/")
	return decoded
}
