package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is recall's top-level, optional configuration document. Every
// field has a built-in default (see defaultConfig), so a missing or
// partial config file is never an error.
type Config struct {
	Indexer IndexerConfig `yaml:"indexer"`
	Read    ReadConfig    `yaml:"read"`
}

// IndexerConfig controls the background indexing pass (INC).
type IndexerConfig struct {
	// ProgressBatch is how many files are processed between Progress
	// events (N in the indexing procedure, default 50).
	ProgressBatch int `yaml:"progress_batch"`

	// ReloadBatch is how many files are processed between commits and
	// NeedsReload events (M in the indexing procedure, default 200).
	ReloadBatch int `yaml:"reload_batch"`

	// WriterBudgetBytes bounds the writer's in-memory batch before an
	// automatic commit, independent of ReloadBatch.
	WriterBudgetBytes int `yaml:"writer_budget_bytes"`

	// PollInterval is how long the foreground waits between indexing
	// passes when no filesystem watch event wakes it first.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ReadConfig controls full-session reads (the "read" CLI subcommand and
// Facade.LoadFull).
type ReadConfig struct {
	// DisableTruncationByDefault, when true, makes every read behave as
	// if --full were passed. Facade.LoadFull ORs it with the caller's flag,
	// so while it is set no single read can turn truncation back on.
	DisableTruncationByDefault bool `yaml:"disable_truncation_by_default"`
}

func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration, used when no config file
// exists and by callers that were handed no explicit config at all.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			ProgressBatch:     50,
			ReloadBatch:       200,
			WriterBudgetBytes: 50 * 1024 * 1024,
			PollInterval:      2 * time.Second,
		},
		Read: ReadConfig{
			DisableTruncationByDefault: false,
		},
	}
}

// LoadOrDefault loads config from the given path, or returns the default
// config if path doesn't exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return Load(path)
}

// Diff compares two configs and returns human-readable descriptions of
// what changed, for logging a config reload.
func Diff(old, new *Config) []string {
	var changes []string

	if old.Indexer.ProgressBatch != new.Indexer.ProgressBatch {
		changes = append(changes, fmt.Sprintf("indexer.progress_batch: %d → %d", old.Indexer.ProgressBatch, new.Indexer.ProgressBatch))
	}
	if old.Indexer.ReloadBatch != new.Indexer.ReloadBatch {
		changes = append(changes, fmt.Sprintf("indexer.reload_batch: %d → %d", old.Indexer.ReloadBatch, new.Indexer.ReloadBatch))
	}
	if old.Indexer.WriterBudgetBytes != new.Indexer.WriterBudgetBytes {
		changes = append(changes, fmt.Sprintf("indexer.writer_budget_bytes: %d → %d", old.Indexer.WriterBudgetBytes, new.Indexer.WriterBudgetBytes))
	}
	if old.Indexer.PollInterval != new.Indexer.PollInterval {
		changes = append(changes, fmt.Sprintf("indexer.poll_interval: %s → %s", old.Indexer.PollInterval, new.Indexer.PollInterval))
	}
	if old.Read.DisableTruncationByDefault != new.Read.DisableTruncationByDefault {
		changes = append(changes, fmt.Sprintf("read.disable_truncation_by_default: %v → %v", old.Read.DisableTruncationByDefault, new.Read.DisableTruncationByDefault))
	}

	return changes
}

// HomeOverrideEnv substitutes for the user's home when locating the cache
// root, matching discover.HomeOverrideEnv so tests can redirect both
// source discovery and the cache to the same temp directory.
const HomeOverrideEnv = "RECALL_HOME_OVERRIDE"

func defaultCacheDir() string {
	if value := os.Getenv("XDG_CACHE_HOME"); value != "" {
		return value
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// CacheRoot returns the product's cache root: the platform cache dir
// joined with the product name, or RECALL_HOME_OVERRIDE joined the same
// way when set.
func CacheRoot() string {
	if home := os.Getenv(HomeOverrideEnv); home != "" {
		return filepath.Join(home, ".cache", "recall")
	}
	return filepath.Join(defaultCacheDir(), "recall")
}

func defaultConfigDir() string {
	if value := os.Getenv("XDG_CONFIG_HOME"); value != "" {
		return value
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// DefaultConfigPath returns the default XDG-compliant config file path.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "recall", "config.yaml")
}
