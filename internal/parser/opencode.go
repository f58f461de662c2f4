package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zippoxer/recall/internal/model"
)

// OpenCodeParser normalises OpenCode's directory-of-small-files session
// layout: one metadata file per session, one file per message, one file per
// message content part.
type OpenCodeParser struct{}

func (OpenCodeParser) CanParse(path string) bool {
	return strings.Contains(filepath.ToSlash(path), ".local/share/opencode/storage/session")
}

type opencodeSession struct {
	ID        string        `json:"id"`
	Directory string        `json:"directory"`
	Time      *opencodeTime `json:"time"`
}

type opencodeTime struct {
	Created int64 `json:"created"`
}

type opencodeMessage struct {
	ID   string            `json:"id"`
	Role string            `json:"role"`
	Time *opencodeTime     `json:"time"`
	Path *opencodePathInfo `json:"path"`
}

type opencodePathInfo struct {
	Cwd string `json:"cwd"`
}

type opencodePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (OpenCodeParser) Parse(path string, _ ReadContext) (model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Session{}, err
	}
	var sess opencodeSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return model.Session{}, err
	}

	storageRoot := storageRootOf(path)
	cwd := sess.Directory
	var latest time.Time
	var messages []model.Message

	if storageRoot != "" {
		msgDir := filepath.Join(storageRoot, "message", sess.ID)
		for _, entry := range sortedOpenCodeMessages(msgDir) {
			role, ok := opencodeRole(entry.msg.Role)
			if !ok {
				continue
			}

			ts := time.Now().UTC()
			if entry.msg.Time != nil {
				ts = time.UnixMilli(entry.msg.Time.Created).UTC()
			}
			if ts.After(latest) {
				latest = ts
			}

			if cwd == "" && entry.msg.Path != nil {
				cwd = entry.msg.Path.Cwd
			}

			content := readOpenCodeParts(storageRoot, entry.msg.ID)
			if content == "" {
				continue
			}
			messages = append(messages, model.Message{
				Role:      role,
				Content:   content,
				Timestamp: ts,
			})
		}
	}

	if cwd == "" {
		cwd = "."
	}
	if latest.IsZero() {
		if sess.Time != nil {
			latest = time.UnixMilli(sess.Time.Created).UTC()
		} else {
			latest = time.Now().UTC()
		}
	}

	id := sess.ID
	if id == "" {
		id = sessionIDFromFilename(path)
	}

	return model.Session{
		ID:        id,
		Source:    model.SourceOpenCode,
		FilePath:  path,
		Cwd:       cwd,
		Timestamp: latest,
		Messages:  joinConsecutiveMessages(messages),
	}, nil
}

func opencodeRole(s string) (model.Role, bool) {
	switch s {
	case "user":
		return model.RoleUser, true
	case "assistant":
		return model.RoleAssistant, true
	default:
		return model.RoleUser, false
	}
}

// storageRootOf walks up from .../storage/session/<project>/ses_*.json to
// .../storage.
func storageRootOf(sessionPath string) string {
	dir := filepath.Dir(sessionPath) // <project>/
	sessionDir := filepath.Dir(dir)  // session/
	if filepath.Base(sessionDir) != "session" {
		return ""
	}
	return filepath.Dir(sessionDir) // storage/
}

type opencodeMessageEntry struct {
	msg opencodeMessage
}

// sortedOpenCodeMessages reads every *.json file under dir and returns their
// parsed messages ordered by embedded creation time.
func sortedOpenCodeMessages(dir string) []opencodeMessageEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []opencodeMessageEntry
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var msg opencodeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		out = append(out, opencodeMessageEntry{msg: msg})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := int64(0), int64(0)
		if out[i].msg.Time != nil {
			ti = out[i].msg.Time.Created
		}
		if out[j].msg.Time != nil {
			tj = out[j].msg.Time.Created
		}
		return ti < tj
	})
	return out
}

// readOpenCodeParts reads every *.json file under <storageRoot>/part/<messageID>,
// sorts by filename (part IDs are lexicographically ordered by creation),
// and concatenates the text of every part whose type is "text".
func readOpenCodeParts(storageRoot, messageID string) string {
	dir := filepath.Join(storageRoot, "part", messageID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var texts []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var part opencodePart
		if err := json.Unmarshal(data, &part); err != nil {
			continue
		}
		if part.Type == "text" && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}
