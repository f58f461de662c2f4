// Package discover implements the Discovery Walker (DW): enumeration of
// candidate transcript files across the four known source roots.
package discover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/zippoxer/recall/internal/model"
)

// HomeOverrideEnv lets tests (and any other caller) substitute for the
// user's real home directory when locating source roots.
const HomeOverrideEnv = "RECALL_HOME_OVERRIDE"

// Home resolves the effective home directory: the override env var if set,
// otherwise os.UserHomeDir().
func Home() (string, error) {
	if v := os.Getenv(HomeOverrideEnv); v != "" {
		return v, nil
	}
	return os.UserHomeDir()
}

// root describes one source's file layout: where to look and which
// filenames qualify.
type root struct {
	source  model.Source
	relDir  string // relative to home
	ext     string
	include func(name string) bool // nil means "any name with the right ext"
}

var roots = []root{
	{
		source: model.SourceClaude,
		relDir: filepath.Join(".claude", "projects"),
		ext:    ".jsonl",
		include: func(name string) bool {
			// Sidechain (subagent) transcripts carry a reserved prefix and
			// are not user-facing sessions.
			return !strings.HasPrefix(name, "agent-")
		},
	},
	{
		source: model.SourceCodex,
		relDir: filepath.Join(".codex", "sessions"),
		ext:    ".jsonl",
	},
	{
		source: model.SourceFactory,
		relDir: filepath.Join(".factory", "sessions"),
		ext:    ".jsonl",
	},
	{
		source: model.SourceOpenCode,
		relDir: filepath.Join(".local", "share", "opencode", "storage", "session"),
		ext:    ".json",
		include: func(name string) bool {
			return strings.HasPrefix(name, "ses_")
		},
	},
}

// Walker discovers transcript files under a fixed home directory.
type Walker struct {
	home string
}

// New returns a Walker rooted at home.
func New(home string) *Walker {
	return &Walker{home: home}
}

// Discover enumerates every candidate transcript file across all known
// source roots. Non-existent roots are skipped silently. Ordering is
// unspecified; callers that care (the indexer, for "newest first") must
// sort the result themselves.
func (w *Walker) Discover() ([]string, error) {
	var files []string
	for _, r := range roots {
		base := filepath.Join(w.home, r.relDir)
		if _, err := os.Stat(base); err != nil {
			continue // root doesn't exist on this machine; not an error
		}

		err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries, don't abort the walk
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if filepath.Ext(name) != r.ext {
				return nil
			}
			if r.include != nil && !r.include(name) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// WatchRoots returns the subset of the four source root directories that
// currently exist, for use by a filesystem watcher that wants to wake the
// indexer early instead of waiting out a full poll interval.
func (w *Walker) WatchRoots() []string {
	var dirs []string
	for _, r := range roots {
		base := filepath.Join(w.home, r.relDir)
		if _, err := os.Stat(base); err == nil {
			dirs = append(dirs, base)
		}
	}
	return dirs
}
