package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zippoxer/recall/internal/api"
	"github.com/zippoxer/recall/internal/discover"
	"github.com/zippoxer/recall/internal/indexer"
)

// ensureIndexFresh runs one indexing pass silently (no progress output) so
// query subcommands always see an up-to-date index without requiring the
// caller to run `recall index` first.
func ensureIndexFresh(facade *api.Facade) error {
	return drainIndexPass(facade, io.Discard, false)
}

var indexFlags struct {
	watch bool
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run one incremental indexing pass and print its progress",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexFlags.watch, "watch", false,
		"keep running, re-indexing when session files change")
}

func runIndex(cmd *cobra.Command, args []string) error {
	facade, err := openFacade()
	if err != nil {
		return err
	}
	defer facade.Close()

	if err := drainIndexPass(facade, cmd.OutOrStdout(), true); err != nil {
		return err
	}
	if !indexFlags.watch {
		return nil
	}
	return watchLoop(facade, cmd.OutOrStdout())
}

// watchLoop re-runs indexing passes until the process is killed, woken by
// filesystem activity in the source roots when a watcher can be established,
// and by the configured poll interval either way.
func watchLoop(facade *api.Facade, out io.Writer) error {
	home, err := discover.Home()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	var signals <-chan struct{}
	watch, err := discover.NewWatch(discover.New(home).WatchRoots())
	if err == nil && watch != nil {
		defer watch.Close()
		signals = watch.Signals()
	}

	ticker := time.NewTicker(loadConfig().Indexer.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-signals:
		}
		if err := drainIndexPass(facade, out, false); err != nil {
			return err
		}
	}
}

// drainIndexPass spawns one indexing pass and consumes its event stream,
// resyncing the query view on every NeedsReload. announceIdle controls
// whether a pass that found nothing to do still prints its Done line.
func drainIndexPass(facade *api.Facade, out io.Writer, announceIdle bool) error {
	indexedAny := false
	for ev := range facade.SpawnIndex() {
		switch ev.Kind {
		case indexer.EventProgress:
			indexedAny = true
			fmt.Fprintf(out, "indexed %d/%d\n", ev.Indexed, ev.Total)
		case indexer.EventNeedsReload:
			if err := facade.ReloadIndex(); err != nil {
				return fmt.Errorf("reloading index: %w", err)
			}
		case indexer.EventDone:
			if err := facade.ReloadIndex(); err != nil {
				return fmt.Errorf("reloading index: %w", err)
			}
			if indexedAny || announceIdle {
				fmt.Fprintf(out, "done: %d sessions discovered\n", ev.TotalSessions)
			}
		case indexer.EventError:
			return fmt.Errorf("indexer stopped unexpectedly: %w", ev.Err)
		}
	}
	return nil
}
