package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zippoxer/recall/internal/api"
	"github.com/zippoxer/recall/internal/model"
)

// defaultMessagesPerSession bounds how many matched messages a session
// contributes to search output (before any --context widening); --session
// lifts the bound.
const defaultMessagesPerSession = 5

var searchFlags struct {
	source    string
	sessionID string
	limit     int
	context   int
	since     string
	until     string
	cwd       string
}

var searchCmd = &cobra.Command{
	Use:   "search <QUERY>",
	Short: "Search indexed session transcripts",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.source, "source", "", "filter by source (claude, codex, factory, opencode)")
	f.StringVar(&searchFlags.sessionID, "session", "", "restrict the search to one session id")
	f.IntVar(&searchFlags.limit, "limit", 10, "maximum number of sessions to return")
	f.IntVar(&searchFlags.context, "context", 0, "messages of context to include around each match")
	f.StringVar(&searchFlags.since, "since", "", "only sessions at or after this time")
	f.StringVar(&searchFlags.until, "until", "", "only sessions at or before this time")
	f.StringVar(&searchFlags.cwd, "cwd", "", "filter by exact working directory")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	var wantSource model.Source
	if searchFlags.source != "" {
		src, ok := model.ParseSource(searchFlags.source)
		if !ok {
			return fmt.Errorf("unknown source: %q", searchFlags.source)
		}
		wantSource = src
	}

	var sinceT, untilT time.Time
	if searchFlags.since != "" {
		t, err := parseTimeFilter(searchFlags.since)
		if err != nil {
			return err
		}
		sinceT = t
	}
	if searchFlags.until != "" {
		t, err := parseTimeFilter(searchFlags.until)
		if err != nil {
			return err
		}
		untilT = t
	}

	cwdFilter := resolveCwdFilter(searchFlags.cwd)

	facade, err := openFacade()
	if err != nil {
		return err
	}
	defer facade.Close()
	if err := ensureIndexFresh(facade); err != nil {
		return err
	}

	var resultRows []searchResultJSON

	if searchFlags.sessionID != "" {
		row, err := searchWithinSession(facade, searchFlags.sessionID, query, searchFlags.context)
		if err != nil {
			return err
		}
		resultRows = []searchResultJSON{row}
	} else {
		hits, err := facade.Search(query, searchFlags.limit*2)
		if err != nil {
			return err
		}
		for _, hit := range hits {
			if len(resultRows) >= searchFlags.limit {
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

			row, err := buildSearchRow(facade, hit.Session, query, searchFlags.context)
			if err != nil {
				continue // session file vanished or became unreadable between index and read
			}
			resultRows = append(resultRows, row)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(searchOutput{Query: query, Results: resultRows})
}

func searchWithinSession(facade *api.Facade, sessionID, query string, context int) (searchResultJSON, error) {
	path, ok := facade.GetByID(sessionID)
	if !ok {
		return searchResultJSON{}, fmt.Errorf("session not found: %s", sessionID)
	}
	session, err := facade.LoadFull(path, false)
	if err != nil {
		return searchResultJSON{}, err
	}
	return rowFromSession(session, query, context, true), nil
}

func buildSearchRow(facade *api.Facade, summary model.Session, query string, context int) (searchResultJSON, error) {
	session, err := facade.LoadFull(summary.FilePath, false)
	if err != nil {
		return searchResultJSON{}, err
	}
	return rowFromSession(session, query, context, false), nil
}

// rowFromSession re-scores a fully loaded session's messages by simple term
// frequency (the query engine already picked this session; this just
// decides which of its messages to surface) and builds the JSON row.
// unlimited, when true, returns every matching message instead of the
// default top-N (used for --session, which already scopes to one session).
func rowFromSession(session model.Session, query string, context int, unlimited bool) searchResultJSON {
	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		index int
		score int
	}
	var hits []scored
	for i, m := range session.Messages {
		lower := strings.ToLower(m.Content)
		score := 0
		for _, t := range terms {
			score += strings.Count(lower, t)
		}
		if score > 0 {
			hits = append(hits, scored{index: i, score: score})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].index > hits[b].index
	})

	if !unlimited && len(hits) > defaultMessagesPerSession {
		hits = hits[:defaultMessagesPerSession]
	}

	var messages []model.Message
	if context > 0 {
		indices := make(map[int]bool)
		for _, h := range hits {
			lo := h.index - context
			if lo < 0 {
				lo = 0
			}
			hi := h.index + context + 1
			if hi > len(session.Messages) {
				hi = len(session.Messages)
			}
			for i := lo; i < hi; i++ {
				indices[i] = true
			}
		}
		ordered := make([]int, 0, len(indices))
		for i := range indices {
			ordered = append(ordered, i)
		}
		sort.Ints(ordered)
		for _, i := range ordered {
			messages = append(messages, session.Messages[i])
		}
	} else {
		for _, h := range hits {
			messages = append(messages, session.Messages[h.index])
		}
	}

	out := make([]messageJSON, len(messages))
	for i, m := range messages {
		out[i] = toMessageJSON(m)
	}

	return searchResultJSON{
		SessionID:        session.ID,
		Source:           session.Source.String(),
		Cwd:              session.Cwd,
		Timestamp:        session.Timestamp,
		RelevantMessages: out,
		ResumeCommand:    resumeCommandString(&session),
	}
}
