// Package model defines the normalised session/message shape every parser
// produces and every downstream consumer (indexer, query engine, CLI)
// speaks in.
package model

import "time"

// Source identifies which on-disk transcript format a Session came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceClaude
	SourceCodex
	SourceFactory
	SourceOpenCode
)

func (s Source) String() string {
	switch s {
	case SourceClaude:
		return "claude"
	case SourceCodex:
		return "codex"
	case SourceFactory:
		return "factory"
	case SourceOpenCode:
		return "opencode"
	default:
		return "unknown"
	}
}

// ParseSource maps a source's string identifier back to its Source value.
func ParseSource(s string) (Source, bool) {
	switch s {
	case "claude":
		return SourceClaude, true
	case "codex":
		return SourceCodex, true
	case "factory":
		return SourceFactory, true
	case "opencode":
		return SourceOpenCode, true
	default:
		return SourceUnknown, false
	}
}

// Role is the speaker of a Message. Only user and assistant turns survive
// normalisation; every other role present in a source file is dropped.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleAssistant {
		return "assistant"
	}
	return "user"
}

// ToolStatus is the resolution state of a ToolCall.
type ToolStatus int

const (
	ToolPending ToolStatus = iota
	ToolSuccess
	ToolError
)

func (s ToolStatus) String() string {
	switch s {
	case ToolSuccess:
		return "success"
	case ToolError:
		return "error"
	default:
		return "pending"
	}
}

// ToolOutput carries the result text of a resolved ToolCall. Content may be
// truncated to keep read and search output bounded; Truncated
// records whether that happened and TotalBytes preserves the original size.
type ToolOutput struct {
	Content     string
	Truncated   bool
	TotalBytes  int
}

// ToolCall is a single tool invocation made by an assistant turn, resolved
// (or not) against its matching tool_result entry.
type ToolCall struct {
	ToolUseID  string
	Name       string
	Input      any
	Status     ToolStatus
	DurationMs *int64
	Output     *ToolOutput
}

// Message is one user or assistant turn within a Session.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
	ToolCalls []ToolCall
}

// Session is a normalised transcript, read-only and reconstructed on demand
// from its source file — never persisted outside the search index and the
// file-state ledger.
type Session struct {
	ID        string
	Source    Source
	FilePath  string
	Cwd       string
	GitBranch string
	Timestamp time.Time
	Messages  []Message
}

// ProjectName returns the last path component of Cwd, a compact label for
// the session's project.
func (s *Session) ProjectName() string {
	return lastPathComponent(s.Cwd)
}

func lastPathComponent(p string) string {
	if p == "" || p == "." {
		return p
	}
	i := len(p) - 1
	for i >= 0 && (p[i] == '/' || p[i] == '\\') {
		i--
	}
	end := i + 1
	for i >= 0 && p[i] != '/' && p[i] != '\\' {
		i--
	}
	if i+1 >= end {
		return p
	}
	return p[i+1 : end]
}
