package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zippoxer/recall/internal/model"
)

var readFlags struct {
	before int
	after  int
	around int
	full   bool
	pretty bool
}

var readCmd = &cobra.Command{
	Use:   "read <SELECTOR>",
	Short: "Read a session, a message range, or a tool call by selector",
	Long: `Selector grammar:
  SESSION_ID            whole session
  SESSION_ID:N          message N (1-based)
  SESSION_ID:N-M        messages N through M, inclusive
  SESSION_ID:-N         the last N messages
  SESSION_ID:errors     only messages with a failed tool call
  SESSION_ID:N.K        tool K of message N (prints the surrounding message)`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	f := readCmd.Flags()
	f.IntVarP(&readFlags.before, "before", "B", 0, "messages of context before the selection")
	f.IntVarP(&readFlags.after, "after", "A", 0, "messages of context after the selection")
	f.IntVarP(&readFlags.around, "context", "C", 0, "messages of context on both sides of the selection")
	f.BoolVar(&readFlags.full, "full", false, "disable tool output truncation for this read")
	f.BoolVar(&readFlags.pretty, "pretty", false, "pretty-print the JSON output")
}

func runRead(cmd *cobra.Command, args []string) error {
	sel, err := parseSelector(args[0])
	if err != nil {
		return fmt.Errorf("malformed selector: %w", err)
	}

	facade, err := openFacade()
	if err != nil {
		return err
	}
	defer facade.Close()
	if err := ensureIndexFresh(facade); err != nil {
		return err
	}

	path, ok := facade.GetByID(sel.sessionID)
	if !ok {
		return fmt.Errorf("session not found: %s", sel.sessionID)
	}

	session, err := facade.LoadFull(path, readFlags.full)
	if err != nil {
		return err
	}

	indices, err := resolveSelection(session, sel)
	if err != nil {
		return err
	}
	indices = expandContext(indices, len(session.Messages), readFlags.before, readFlags.after, readFlags.around)

	messages := make([]messageJSON, len(indices))
	for i, idx := range indices {
		messages[i] = toMessageJSON(session.Messages[idx])
	}

	out := readOutput{
		SessionID:     session.ID,
		Source:        session.Source.String(),
		Cwd:           session.Cwd,
		GitBranch:     session.GitBranch,
		Timestamp:     session.Timestamp,
		ResumeCommand: resumeCommandString(&session),
		Messages:      messages,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if readFlags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// resolveSelection turns a parsed selector into the (0-based, ascending)
// message indices it addresses.
func resolveSelection(session model.Session, sel selector) ([]int, error) {
	n := len(session.Messages)
	switch sel.kind {
	case selectorSession:
		return sequence(0, n), nil

	case selectorSingle:
		idx := sel.single - 1
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("message index out of range: %d", sel.single)
		}
		return []int{idx}, nil

	case selectorTool:
		idx := sel.msgIdx - 1
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("message index out of range: %d", sel.msgIdx)
		}
		if sel.toolIdx < 1 || sel.toolIdx > len(session.Messages[idx].ToolCalls) {
			return nil, fmt.Errorf("tool index out of range: %d", sel.toolIdx)
		}
		return []int{idx}, nil

	case selectorRange:
		lo, hi := sel.rangeLo-1, sel.rangeHi-1
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid range: %d-%d", sel.rangeLo, sel.rangeHi)
		}
		return sequence(lo, hi+1), nil

	case selectorLast:
		lo := n - sel.last
		if lo < 0 {
			lo = 0
		}
		return sequence(lo, n), nil

	case selectorErrors:
		var out []int
		for i, m := range session.Messages {
			if hasErrorToolCall(m) {
				out = append(out, i)
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported selector")
	}
}

func hasErrorToolCall(m model.Message) bool {
	for _, tc := range m.ToolCalls {
		if tc.Status == model.ToolError {
			return true
		}
	}
	return false
}

func sequence(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// expandContext widens base to include `before` messages ahead of and
// `after` behind each selected index (both widened further by `around` on
// either side), clamped to [0, total), deduplicated and sorted ascending.
func expandContext(base []int, total, before, after, around int) []int {
	before += around
	after += around
	if before == 0 && after == 0 {
		return base
	}

	seen := make(map[int]bool, len(base))
	for _, idx := range base {
		lo := idx - before
		if lo < 0 {
			lo = 0
		}
		hi := idx + after
		if hi >= total {
			hi = total - 1
		}
		for i := lo; i <= hi; i++ {
			seen[i] = true
		}
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
