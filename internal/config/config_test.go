package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIndexerBatches(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Indexer.ProgressBatch != 50 {
		t.Errorf("ProgressBatch = %d, want 50", cfg.Indexer.ProgressBatch)
	}
	if cfg.Indexer.ReloadBatch != 200 {
		t.Errorf("ReloadBatch = %d, want 200", cfg.Indexer.ReloadBatch)
	}
	if cfg.Indexer.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %s, want 2s", cfg.Indexer.PollInterval)
	}
	if cfg.Read.DisableTruncationByDefault {
		t.Error("DisableTruncationByDefault should default to false")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Indexer.ReloadBatch != 200 {
		t.Errorf("expected default config, got ReloadBatch=%d", cfg.Indexer.ReloadBatch)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("indexer:\n  progress_batch: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Indexer.ProgressBatch != 10 {
		t.Errorf("ProgressBatch = %d, want 10 (overridden)", cfg.Indexer.ProgressBatch)
	}
	if cfg.Indexer.ReloadBatch != 200 {
		t.Errorf("ReloadBatch = %d, want 200 (default preserved)", cfg.Indexer.ReloadBatch)
	}
}

func TestCacheRootHonorsHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeOverrideEnv, dir)

	got := CacheRoot()
	want := filepath.Join(dir, ".cache", "recall")
	if got != want {
		t.Errorf("CacheRoot() = %q, want %q", got, want)
	}
}

func TestDiffReportsChanges(t *testing.T) {
	old := defaultConfig()
	updated := defaultConfig()
	updated.Indexer.ProgressBatch = 25
	updated.Read.DisableTruncationByDefault = true

	changes := Diff(old, updated)
	if len(changes) != 2 {
		t.Fatalf("Diff returned %d changes, want 2: %v", len(changes), changes)
	}
}
