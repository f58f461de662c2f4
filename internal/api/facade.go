// Package api exposes the Core API Facade (API): the thin synchronous
// surface the CLI collaborator drives. It owns the index store, dispatches
// indexing and queries, and loads full sessions on demand via the parser.
package api

import (
	"github.com/zippoxer/recall/internal/config"
	"github.com/zippoxer/recall/internal/index"
	"github.com/zippoxer/recall/internal/indexer"
	"github.com/zippoxer/recall/internal/model"
	"github.com/zippoxer/recall/internal/parser"
	"github.com/zippoxer/recall/internal/query"
)

// Facade is the API surface: a store, a query engine over it, and the home
// directory and state path an indexing pass needs.
type Facade struct {
	store *index.Store
	query *query.Engine
	cfg   *config.Config

	home      string
	statePath string
}

// Open opens or creates the index at indexPath and returns a ready Facade
// rooted at home, with its file-state ledger at statePath. A nil cfg uses
// the built-in defaults.
func Open(indexPath, home, statePath string, cfg *config.Config) (*Facade, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	store, err := index.OpenOrCreate(indexPath)
	if err != nil {
		return nil, err
	}
	return &Facade{
		store:     store,
		query:     query.New(store),
		cfg:       cfg,
		home:      home,
		statePath: statePath,
	}, nil
}

// Close releases the underlying index handles.
func (f *Facade) Close() error {
	return f.store.Close()
}

// SpawnIndex kicks off one indexing pass in the background and returns its
// event channel. poll_events in spec terms is just draining this channel
// non-blockingly from the caller's side (a select with default).
func (f *Facade) SpawnIndex() <-chan indexer.Event {
	return indexer.Run(f.store, f.home, f.statePath, indexer.Options{
		ProgressBatch:     f.cfg.Indexer.ProgressBatch,
		ReloadBatch:       f.cfg.Indexer.ReloadBatch,
		WriterBudgetBytes: f.cfg.Indexer.WriterBudgetBytes,
	})
}

// ReloadIndex resyncs the query engine with the committed index state.
// Callers invoke this after observing an indexer.EventNeedsReload.
func (f *Facade) ReloadIndex() error {
	return f.store.Reload()
}

// Search delegates to the query engine.
func (f *Facade) Search(q string, limit int) ([]model.SearchResult, error) {
	return f.query.Search(q, limit)
}

// Recent delegates to the query engine.
func (f *Facade) Recent(limit int) ([]model.SearchResult, error) {
	return f.query.Recent(limit)
}

// GetByID delegates to the query engine.
func (f *Facade) GetByID(sessionID string) (string, bool) {
	return f.query.GetByID(sessionID)
}

// LoadFull reads and normalises the full session at path, dispatching to
// the parser registry. Truncation of tool outputs is disabled when the
// caller asks for it (a one-shot --full read) or when the config turns it
// off across the board.
func (f *Facade) LoadFull(path string, disableTruncation bool) (model.Session, error) {
	disableTruncation = disableTruncation || f.cfg.Read.DisableTruncationByDefault
	return parser.ParseSession(path, parser.ReadContext{DisableTruncation: disableTruncation})
}
