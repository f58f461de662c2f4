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

// FactoryParser normalises Droid/Factory's JSONL transcripts under
// ~/.factory/sessions/<encoded-cwd>/*.jsonl.
type FactoryParser struct{}

func (FactoryParser) CanParse(path string) bool {
	slash := filepath.ToSlash(path)
	return strings.Contains(slash, ".factory/sessions")
}

type factoryLine struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Cwd       string          `json:"cwd"`
	Timestamp string          `json:"timestamp"`
	Message   *factoryMessage `json:"message"`
}

type factoryMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

func (FactoryParser) Parse(path string, ctx ReadContext) (model.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Session{}, err
	}
	defer f.Close()

	var (
		sessionID, cwd string
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

		var entry factoryLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		switch entry.Type {
		case "session_start":
			if sessionID == "" {
				sessionID = entry.ID
			}
			if cwd == "" {
				cwd = entry.Cwd
			}

		case "message":
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

			ts := parseTimestamp(entry.Timestamp)
			if ts.IsZero() {
				ts = time.Now().UTC()
			}
			if ts.After(latest) {
				latest = ts
			}

			// Factory's content blocks share Claude's shape (type/text,
			// tool_use, tool_result).
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
	}

	for i := range messages {
		messages[i].ToolCalls = resolveToolCalls(messages[i].ToolCalls, results, ctx.DisableTruncation)
	}

	if cwd == "" {
		cwd = decodeFactorySessionDir(path)
	}
	if cwd == "" {
		cwd = "."
	}
	if sessionID == "" {
		sessionID = sessionIDFromFilename(path)
	}
	if latest.IsZero() {
		latest = time.Now().UTC()
	}

	return model.Session{
		ID:        sessionID,
		Source:    model.SourceFactory,
		FilePath:  path,
		Cwd:       cwd,
		Timestamp: latest,
		Messages:  joinConsecutiveMessages(messages),
	}, nil
}

// decodeFactorySessionDir recovers cwd from Factory's session directory
// name, e.g. "-Users-zippo-code-recall" decodes to "/Users/zippo/code/recall".
// Unlike Claude's encoding, the first "-" always maps to the leading "/" and
// every other "-" maps to a path separator too; there's no "--" escape.
func decodeFactorySessionDir(sessionPath string) string {
	dir := filepath.Dir(sessionPath)
	name := filepath.Base(dir)
	if !strings.HasPrefix(name, "-") {
		return ""
	}
	return strings.ReplaceAll(name, "-", "/")
}
