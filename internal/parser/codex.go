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

// CodexParser normalises Codex CLI's rollout transcripts under
// ~/.codex/sessions/YYYY/MM/DD/rollout-*.jsonl.
type CodexParser struct{}

func (CodexParser) CanParse(path string) bool {
	return strings.Contains(filepath.ToSlash(path), ".codex/sessions")
}

type codexLine struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type codexSessionMeta struct {
	ID  string    `json:"id"`
	Cwd string    `json:"cwd"`
	Git *codexGit `json:"git"`
}

type codexGit struct {
	Branch string `json:"branch"`
}

type codexResponseItem struct {
	Role    string       `json:"role"`
	Content []codexBlock `json:"content"`
}

type codexBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	CallID    string          `json:"call_id"`
	Name      string          `json:"name"`
	Arguments string          `json:"arguments"`
	Output    json.RawMessage `json:"output"`
}

func (CodexParser) Parse(path string, ctx ReadContext) (model.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Session{}, err
	}
	defer f.Close()

	var (
		sessionID, cwd, gitBranch string
		latest                    time.Time
		messages                  []model.Message
		results                   = map[string]toolResult{}
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry codexLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		ts := parseTimestamp(entry.Timestamp)
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		switch entry.Type {
		case "session_meta":
			var meta codexSessionMeta
			if err := json.Unmarshal(entry.Payload, &meta); err != nil {
				continue
			}
			if sessionID == "" {
				sessionID = meta.ID
			}
			if cwd == "" {
				cwd = meta.Cwd
			}
			if gitBranch == "" && meta.Git != nil {
				gitBranch = meta.Git.Branch
			}

		case "response_item":
			var item codexResponseItem
			if err := json.Unmarshal(entry.Payload, &item); err != nil {
				continue
			}

			// Extract first so function_call_output results are recorded even
			// when the record carries no role signal and is itself dropped.
			text, calls := extractCodexContent(item, results)

			role, ok := codexRole(item)
			if !ok {
				continue
			}
			if text == "" && len(calls) == 0 {
				continue
			}
			if role == model.RoleUser && isCommandExpansion(text) {
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
			if ts.After(latest) {
				latest = ts
			}
		}
	}

	for i := range messages {
		messages[i].ToolCalls = resolveToolCalls(messages[i].ToolCalls, results, ctx.DisableTruncation)
	}

	if sessionID == "" {
		sessionID = sessionIDFromFilename(path)
	}
	if cwd == "" {
		cwd = "."
	}
	if latest.IsZero() {
		latest = time.Now().UTC()
	}

	return model.Session{
		ID:        sessionID,
		Source:    model.SourceCodex,
		FilePath:  path,
		Cwd:       cwd,
		GitBranch: gitBranch,
		Timestamp: latest,
		Messages:  joinConsecutiveMessages(messages),
	}, nil
}

// codexRole resolves a response_item's role, inferring it from content block
// kind when the item itself doesn't carry one (Codex's raw request/response
// logging omits role on some record shapes).
func codexRole(item codexResponseItem) (model.Role, bool) {
	switch item.Role {
	case "user":
		return model.RoleUser, true
	case "assistant":
		return model.RoleAssistant, true
	}
	for _, b := range item.Content {
		switch b.Type {
		case "input_text":
			return model.RoleUser, true
		case "output_text":
			return model.RoleAssistant, true
		}
	}
	return model.RoleUser, false
}

// extractCodexContent mirrors extractClaudeContent for Codex's response_item
// shape: input_text/output_text blocks concatenate into content,
// function_call becomes a pending ToolCall, and function_call_output
// resolves one by call_id.
func extractCodexContent(item codexResponseItem, results map[string]toolResult) (string, []model.ToolCall) {
	var texts []string
	var calls []model.ToolCall
	for _, b := range item.Content {
		switch b.Type {
		case "input_text", "output_text", "text":
			if b.Text != "" {
				texts = append(texts, b.Text)
			}
		case "function_call":
			calls = append(calls, model.ToolCall{
				ToolUseID: b.CallID,
				Name:      b.Name,
				Input:     decodeCodexArguments(b.Arguments),
				Status:    model.ToolPending,
			})
		case "function_call_output":
			results[b.CallID] = toolResult{
				content: extractToolResultText(b.Output),
				isError: false,
			}
		default:
		}
	}
	return strings.Join(texts, "\n"), calls
}

func decodeCodexArguments(raw string) any {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
