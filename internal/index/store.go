package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
)

// writerBudgetBytes is the default in-memory batch size before the writer
// commits on its own, independent of the indexer's file-count cadence.
const writerBudgetBytes = 50 * 1024 * 1024

// Store is the Index Store (IDX): a bleve index holding one document per
// message. The indexer owns the sole Writer, which buffers mutations in a
// batch and publishes them atomically on Commit; searches run concurrently
// against the same handle and observe a batch either fully applied or not
// at all.
type Store struct {
	path string
	idx  bleve.Index
}

// OpenOrCreate opens path if it already holds an index (detected by bleve's
// own metadata marker), or creates one from the schema in doc.go. A leftover
// directory without the marker (e.g. from a crashed first run) is discarded
// and recreated.
func OpenOrCreate(path string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(path, "index_meta.json")); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening index: %w", err)
		}
		return &Store{path: path, idx: idx}, nil
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clearing stale index dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	idx, err := bleve.NewUsing(path, buildMapping(), bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, nil)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Store{path: path, idx: idx}, nil
}

// Reload is the foreground's resync point after a NeedsReload event. bleve
// makes committed batches visible to searchers immediately, so there is no
// snapshot handle to swap; Reload checks the index is still healthy and
// returns, after which callers re-issue their current query.
func (s *Store) Reload() error {
	if _, err := s.idx.DocCount(); err != nil {
		return fmt.Errorf("reloading index: %w", err)
	}
	return nil
}

// Close releases the index handle.
func (s *Store) Close() error {
	return s.idx.Close()
}

// Reader returns the handle queries run against. Uncommitted writer batches
// are never visible through it.
func (s *Store) Reader() bleve.Index {
	return s.idx
}

// Writer returns a batch writer with the default in-memory budget. Only the
// indexer should call this; it owns the writer for the lifetime of one
// indexing pass.
func (s *Store) Writer() *Writer {
	return &Writer{idx: s.idx, batch: s.idx.NewBatch(), budget: writerBudgetBytes}
}

// Writer accumulates add/delete operations into a bounded in-memory batch
// before committing them to the index in one atomic step.
type Writer struct {
	idx    bleve.Index
	batch  *bleve.Batch
	budget int
	used   int
	ops    int
}

// SetBudget overrides the in-memory batch budget, in bytes of buffered
// message content. Values <= 0 are ignored.
func (w *Writer) SetBudget(bytes int) {
	if bytes > 0 {
		w.budget = bytes
	}
}

// IndexSession adds one document per message in session, keyed by
// "<file_path>#<message_index>" so re-adding the same file produces stable,
// overwritable IDs.
func (w *Writer) IndexSession(filePath string, docs []Doc) error {
	for _, d := range docs {
		id := docID(filePath, d.MessageIndex)
		if err := w.batch.Index(id, d); err != nil {
			return fmt.Errorf("batching document %s: %w", id, err)
		}
		w.used += len(d.Content)
		w.ops++
	}
	return w.commitIfOverBudget()
}

// DeleteSession removes every document previously committed for filePath, by
// looking up their IDs via a term query on the file_path field, then batching
// deletes. This always runs before IndexSession for the same file; because
// both land in the same batch, delete-then-add is atomic and no reader ever
// sees a partial overlap of one file's messages.
func (w *Writer) DeleteSession(filePath string) error {
	q := bleve.NewTermQuery(filePath)
	q.SetField(FieldFilePath)
	req := bleve.NewSearchRequestOptions(q, 1<<20, 0, false)

	result, err := w.idx.Search(req)
	if err != nil {
		return fmt.Errorf("finding existing documents for %s: %w", filePath, err)
	}
	for _, hit := range result.Hits {
		w.batch.Delete(hit.ID)
		w.ops++
	}
	return nil
}

func (w *Writer) commitIfOverBudget() error {
	if w.used < w.budget {
		return nil
	}
	return w.Commit()
}

// Commit applies the current batch to the index and resets it for further
// use within the same writer lifetime.
func (w *Writer) Commit() error {
	if w.ops == 0 {
		return nil
	}
	if err := w.idx.Batch(w.batch); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	w.batch = w.idx.NewBatch()
	w.used = 0
	w.ops = 0
	return nil
}

func docID(filePath string, messageIndex int) string {
	return fmt.Sprintf("%s#%06d", filePath, messageIndex)
}
