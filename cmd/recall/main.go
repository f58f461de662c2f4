// Package main implements the recall CLI: a thin, scriptable surface over
// the Core API Facade (internal/api) for agents and shell users alike.
// The search, list and read subcommands print a single JSON document to
// stdout; index prints plain-text progress lines. Every subcommand exits
// non-zero on error.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zippoxer/recall/internal/api"
	"github.com/zippoxer/recall/internal/config"
	"github.com/zippoxer/recall/internal/discover"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "recall",
	Short:   "Search and browse AI coding assistant session transcripts",
	Version: version,
}

func init() {
	rootCmd.AddCommand(searchCmd, listCmd, readCmd, indexCmd)
}

// loadConfig reads the optional on-disk config, falling back to defaults on
// any problem — a broken config file should degrade the tool, not brick it.
func loadConfig() *config.Config {
	cfg, err := config.LoadOrDefault(config.DefaultConfigPath())
	if err != nil {
		log.Printf("[config] %v (using defaults)", err)
		return config.Default()
	}
	return cfg
}

// openFacade opens the Core API Facade against the effective home directory
// and cache root, creating the index on first use.
func openFacade() (*api.Facade, error) {
	home, err := discover.Home()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	root := config.CacheRoot()
	return api.Open(filepath.Join(root, "index"), home, filepath.Join(root, "state.json"), loadConfig())
}
