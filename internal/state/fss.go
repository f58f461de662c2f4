// Package state implements the File State Store (FSS): the persistent
// (path -> mtime, size) ledger the incremental indexer uses to decide which
// transcript files need reindexing.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentVersion is the schema version written by Save. Stores loaded with
// an unrecognised version are discarded in favour of starting empty.
const CurrentVersion = 1

// FileState is the recorded (mtime, size) pair for one indexed path.
type FileState struct {
	MtimeSeconds uint64 `json:"mtime"`
	SizeBytes    uint64 `json:"size"`
}

// onDisk is the JSON document shape persisted under the cache root.
type onDisk struct {
	Version      int                  `json:"version"`
	IndexedFiles map[string]FileState `json:"indexed_files"`
}

// Store is the in-memory File State Store. It is not safe for concurrent
// use — the indexer is its sole owner.
type Store struct {
	path         string
	indexedFiles map[string]FileState
}

// Load reads path into a Store. A missing file, or one whose schema version
// doesn't match CurrentVersion, yields an empty store rather than an error.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newEmpty(path), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	var d onDisk
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	if d.Version != CurrentVersion {
		return newEmpty(path), nil
	}
	if d.IndexedFiles == nil {
		d.IndexedFiles = make(map[string]FileState)
	}
	return &Store{path: path, indexedFiles: d.IndexedFiles}, nil
}

func newEmpty(path string) *Store {
	return &Store{path: path, indexedFiles: make(map[string]FileState)}
}

// NeedsReindex reports whether path's current on-disk (mtime, size) differs
// from the recorded entry, or no entry exists. A file that no longer exists
// never needs reindexing (it will simply not appear in the next discovery
// pass).
func (s *Store) NeedsReindex(path string) bool {
	current, ok := currentFileState(path)
	if !ok {
		return false
	}
	recorded, ok := s.indexedFiles[path]
	if !ok {
		return true
	}
	return recorded != current
}

// MarkIndexed records path's current (mtime, size). No-op if the file
// cannot be stat'd (e.g. it was deleted mid-pass).
func (s *Store) MarkIndexed(path string) {
	if fs, ok := currentFileState(path); ok {
		s.indexedFiles[path] = fs
	}
}

// Forget removes path's entry, if any.
func (s *Store) Forget(path string) {
	delete(s.indexedFiles, path)
}

// Save atomically writes the store to its path (write-to-temp, then
// rename).
func (s *Store) Save() error {
	d := onDisk{Version: CurrentVersion, IndexedFiles: s.indexedFiles}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp state file: %w", err)
	}
	return nil
}

func currentFileState(path string) (FileState, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return FileState{}, false
	}
	return FileState{
		MtimeSeconds: uint64(info.ModTime().Unix()),
		SizeBytes:    uint64(info.Size()),
	}, true
}
