package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zippoxer/recall/internal/model"
)

var listFlags struct {
	limit  int
	source string
	since  string
	until  string
	cwd    string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently indexed sessions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.IntVar(&listFlags.limit, "limit", 20, "maximum number of sessions to return")
	f.StringVar(&listFlags.source, "source", "", "filter by source (claude, codex, factory, opencode)")
	f.StringVar(&listFlags.since, "since", "", "only sessions at or after this time")
	f.StringVar(&listFlags.until, "until", "", "only sessions at or before this time")
	f.StringVar(&listFlags.cwd, "cwd", "", "filter by exact working directory")
}

func runList(cmd *cobra.Command, args []string) error {
	var wantSource model.Source
	if listFlags.source != "" {
		src, ok := model.ParseSource(listFlags.source)
		if !ok {
			return fmt.Errorf("unknown source: %q", listFlags.source)
		}
		wantSource = src
	}

	var sinceT, untilT time.Time
	if listFlags.since != "" {
		t, err := parseTimeFilter(listFlags.since)
		if err != nil {
			return err
		}
		sinceT = t
	}
	if listFlags.until != "" {
		t, err := parseTimeFilter(listFlags.until)
		if err != nil {
			return err
		}
		untilT = t
	}

	cwdFilter := resolveCwdFilter(listFlags.cwd)

	facade, err := openFacade()
	if err != nil {
		return err
	}
	defer facade.Close()
	if err := ensureIndexFresh(facade); err != nil {
		return err
	}

	hits, err := facade.Recent(listFlags.limit * 2)
	if err != nil {
		return err
	}

	var sessions []listSessionJSON
	for _, hit := range hits {
		if len(sessions) >= listFlags.limit {
			break
		}
		if wantSource != model.SourceUnknown && hit.Session.Source != wantSource {
			continue
		}
		if !sinceT.IsZero() && hit.Session.Timestamp.Before(sinceT) {
			continue
		}
		if !untilT.IsZero() && hit.Session.Timestamp.After(untilT) {
			continue
		}
		if cwdFilter != "" && hit.Session.Cwd != cwdFilter {
			continue
		}

		session := hit.Session
		sessions = append(sessions, listSessionJSON{
			SessionID:     session.ID,
			Source:        session.Source.String(),
			Cwd:           session.Cwd,
			Timestamp:     session.Timestamp,
			ResumeCommand: resumeCommandString(&session),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(listOutput{Sessions: sessions})
}
