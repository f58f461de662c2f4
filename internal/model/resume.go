package model

import (
	"os"
	"strings"
)

// defaultResumeCommands holds the program+args used to resume a session in
// its originating tool, keyed by Source. {id} is substituted with the
// session's ID.
var defaultResumeCommands = map[Source][]string{
	SourceClaude:   {"claude", "--resume", "{id}"},
	SourceCodex:    {"codex", "resume", "{id}"},
	SourceFactory:  {"droid", "--resume", "{id}"},
	SourceOpenCode: {"opencode", "--session", "{id}"},
}

var resumeEnvVar = map[Source]string{
	SourceClaude:   "RECALL_CLAUDE_CMD",
	SourceCodex:    "RECALL_CODEX_CMD",
	SourceFactory:  "RECALL_FACTORY_CMD",
	SourceOpenCode: "RECALL_OPENCODE_CMD",
}

// ResumeCommand returns the program and arguments used to resume this
// session in its originating tool. A RECALL_<SOURCE>_CMD environment
// variable, when set, overrides the default; {id} in its value is replaced
// with the session ID before the string is split on whitespace.
func (s *Session) ResumeCommand() (string, []string) {
	if env := resumeEnvVar[s.Source]; env != "" {
		if raw := os.Getenv(env); raw != "" {
			expanded := strings.ReplaceAll(raw, "{id}", s.ID)
			parts := strings.Fields(expanded)
			if len(parts) > 0 {
				return parts[0], parts[1:]
			}
		}
	}

	def := defaultResumeCommands[s.Source]
	if len(def) == 0 {
		return "", nil
	}
	args := make([]string, len(def)-1)
	for i, a := range def[1:] {
		args[i] = strings.ReplaceAll(a, "{id}", s.ID)
	}
	return def[0], args
}
