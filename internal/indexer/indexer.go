// Package indexer implements the Incremental Indexer (INC): the background
// worker that brings the search index up to date with on-disk transcripts,
// reporting progress to the foreground over a one-way event channel.
package indexer

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/zippoxer/recall/internal/discover"
	"github.com/zippoxer/recall/internal/index"
	"github.com/zippoxer/recall/internal/parser"
	"github.com/zippoxer/recall/internal/state"
)

// defaultProgressBatch and defaultReloadBatch are the N and M constants from
// the indexing procedure: emit Progress at least every 50 files, commit and
// invite a reader reload every 200.
const (
	defaultProgressBatch = 50
	defaultReloadBatch   = 200
)

// Options tunes one indexing pass. Zero values fall back to the defaults
// above (and the writer's own budget), so Options{} is always valid.
type Options struct {
	ProgressBatch     int
	ReloadBatch       int
	WriterBudgetBytes int
}

func (o Options) withDefaults() Options {
	if o.ProgressBatch <= 0 {
		o.ProgressBatch = defaultProgressBatch
	}
	if o.ReloadBatch <= 0 {
		o.ReloadBatch = defaultReloadBatch
	}
	return o
}

// EventKind discriminates the Event union sent over the indexer's channel.
type EventKind int

const (
	EventProgress EventKind = iota
	EventNeedsReload
	EventDone
	EventError
)

// Event is one message on the indexer -> foreground channel. Only the
// fields relevant to Kind are populated.
type Event struct {
	Kind          EventKind
	Indexed       int
	Total         int
	TotalSessions int
	Err           error
}

// Run executes one indexing pass against store, rooted at home, persisting
// file-state to statePath. Events are sent on the returned channel in
// emission order; the channel is closed when the pass ends, successfully or
// not.
func Run(store *index.Store, home, statePath string, opts Options) <-chan Event {
	events := make(chan Event, 64)
	go run(store, home, statePath, opts.withDefaults(), events)
	return events
}

func run(store *index.Store, home, statePath string, opts Options, events chan<- Event) {
	defer close(events)

	// passID correlates this pass's log lines; it has no on-disk meaning
	// and is never persisted.
	passID := uuid.NewString()
	log.Printf("[indexer] pass %s starting", passID)

	fss, err := state.Load(statePath)
	if err != nil {
		send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("loading state: %w", err)})
		return
	}

	walker := discover.New(home)
	files, err := walker.Discover()
	if err != nil {
		send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("discovering files: %w", err)})
		return
	}
	sortByModTimeDesc(files)

	var toIndex []string
	for _, f := range files {
		if fss.NeedsReindex(f) {
			toIndex = append(toIndex, f)
		}
	}

	if len(toIndex) == 0 {
		send(events, passID, Event{Kind: EventDone, TotalSessions: len(files)})
		return
	}

	writer := store.Writer()
	writer.SetBudget(opts.WriterBudgetBytes)

	indexed := 0
	sinceProgress := 0
	sinceReload := 0
	for _, path := range toIndex {
		if err := writer.DeleteSession(path); err != nil {
			log.Printf("[indexer] delete %s: %v", path, err)
		}

		session, err := parser.ParseSession(path, parser.ReadContext{})
		if err != nil {
			log.Printf("[indexer] parse %s: %v", path, err)
		} else if len(session.Messages) > 0 {
			if err := writer.IndexSession(path, index.DocsForSession(session)); err != nil {
				send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("indexing %s: %w", path, err)})
				writer.Commit()
				return
			}
			fss.MarkIndexed(path)
		}

		indexed++
		sinceProgress++
		sinceReload++

		if sinceProgress >= opts.ProgressBatch || indexed == len(toIndex) {
			sendProgress(events, Event{Kind: EventProgress, Indexed: indexed, Total: len(toIndex)})
			sinceProgress = 0
		}

		if sinceReload >= opts.ReloadBatch {
			if err := writer.Commit(); err != nil {
				send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("committing batch: %w", err)})
				return
			}
			send(events, passID, Event{Kind: EventNeedsReload})
			sinceReload = 0
		}
	}

	if err := writer.Commit(); err != nil {
		send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("final commit: %w", err)})
		return
	}
	if err := fss.Save(); err != nil {
		send(events, passID, Event{Kind: EventError, Err: fmt.Errorf("saving state: %w", err)})
		return
	}

	send(events, passID, Event{Kind: EventDone, TotalSessions: len(files)})
}

// send delivers e on the buffered event channel. Terminal events (Done and
// Error) are also logged against passID so a pass's outcome is findable in
// the log even if nothing ever drains the channel.
func send(events chan<- Event, passID string, e Event) {
	switch e.Kind {
	case EventDone:
		log.Printf("[indexer] pass %s done: %d sessions discovered", passID, e.TotalSessions)
	case EventError:
		log.Printf("[indexer] pass %s failed: %v", passID, e.Err)
	}
	events <- e
}

// sendProgress drops the event when the channel buffer is full: Progress is
// a lossy signal, and a consumer that stopped draining (or never started)
// must not wedge the pass. NeedsReload/Done/Error always go through send.
func sendProgress(events chan<- Event, e Event) {
	select {
	case events <- e:
	default:
	}
}

// sortByModTimeDesc orders files so the user's most recent work is indexed
// first and surfaces soonest. Ties (equal or unreadable mtimes) preserve
// discovery order.
func sortByModTimeDesc(files []string) {
	mtimes := make(map[string]int64, len(files))
	for _, f := range files {
		mtimes[f] = modTimeUnix(f)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return mtimes[files[i]] > mtimes[files[j]]
	})
}

func modTimeUnix(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().Unix()
}
