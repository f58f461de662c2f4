package query

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zippoxer/recall/internal/index"
	"github.com/zippoxer/recall/internal/model"
)

func newTestStore(t *testing.T) *index.Store {
	t.Helper()
	store, err := index.OpenOrCreate(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedSession(t *testing.T, store *index.Store, sess model.Session) {
	t.Helper()
	w := store.Writer()
	require.NoError(t, w.DeleteSession(sess.FilePath))
	require.NoError(t, w.IndexSession(sess.FilePath, index.DocsForSession(sess)))
	require.NoError(t, w.Commit())
	require.NoError(t, store.Reload())
}

func TestEngineSearchRanksExactPhraseHigher(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	seedSession(t, store, model.Session{
		ID:        "s1",
		Source:    model.SourceClaude,
		FilePath:  "/home/u/.claude/projects/p/s1.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: now,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "how do I configure the database connection pool"},
		},
	})
	seedSession(t, store, model.Session{
		ID:        "s2",
		Source:    model.SourceClaude,
		FilePath:  "/home/u/.claude/projects/p/s2.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: now,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "database pool connection settings are scattered across config files"},
		},
	})

	engine := New(store)
	results, err := engine.Search("database connection pool", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "s1", results[0].Session.ID, "exact phrase match should outrank scattered terms")
}

func TestEngineSearchEmptyQuery(t *testing.T) {
	store := newTestStore(t)
	engine := New(store)

	results, err := engine.Search("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngineRecentDedupesBySession(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	seedSession(t, store, model.Session{
		ID:        "recent-1",
		Source:    model.SourceCodex,
		FilePath:  "/home/u/.codex/sessions/r1.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: now,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "first"},
			{Role: model.RoleAssistant, Content: "second"},
		},
	})
	seedSession(t, store, model.Session{
		ID:        "recent-2",
		Source:    model.SourceCodex,
		FilePath:  "/home/u/.codex/sessions/r2.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: now.Add(-time.Hour),
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "older session"},
		},
	})

	engine := New(store)
	results, err := engine.Recent(10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "recent-1", results[0].Session.ID)
}

func TestEngineSearchTieBreaksBySessionID(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	// Two sessions with identical content and timestamps score identically;
	// the returned order must still be deterministic.
	for _, id := range []string{"tie-b", "tie-a"} {
		seedSession(t, store, model.Session{
			ID:        id,
			Source:    model.SourceClaude,
			FilePath:  "/home/u/.claude/projects/p/" + id + ".jsonl",
			Cwd:       "/home/u/p",
			Timestamp: now,
			Messages: []model.Message{
				{Role: model.RoleUser, Content: "identical tiebreak content", Timestamp: now},
			},
		})
	}

	engine := New(store)
	results, err := engine.Search("tiebreak", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "tie-a", results[0].Session.ID)
	assert.Equal(t, "tie-b", results[1].Session.ID)
}

func TestEngineSearchResultsCarryHighlightSpans(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	seedSession(t, store, model.Session{
		ID:        "hl-1",
		Source:    model.SourceClaude,
		FilePath:  "/home/u/.claude/projects/p/hl-1.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: now,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "please refactor the\nwidget registry", Timestamp: now},
		},
	})

	engine := New(store)
	results, err := engine.Search("widget", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.NotEmpty(t, r.MatchSpans)
	assert.NotContains(t, r.Snippet, "\n", "display snippet collapses newlines")
	for _, span := range r.MatchSpans {
		require.LessOrEqual(t, span.End, len(r.Snippet))
		assert.Equal(t, "widget", r.Snippet[span.Start:span.End])
	}
}

func TestEngineGetByID(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, model.Session{
		ID:        "lookup-me",
		Source:    model.SourceFactory,
		FilePath:  "/home/u/.factory/sessions/p/lookup.jsonl",
		Cwd:       "/home/u/p",
		Timestamp: time.Now().UTC(),
		Messages:  []model.Message{{Role: model.RoleUser, Content: "hi"}},
	})

	engine := New(store)
	path, ok := engine.GetByID("lookup-me")
	assert.True(t, ok)
	assert.Equal(t, "/home/u/.factory/sessions/p/lookup.jsonl", path)

	_, ok = engine.GetByID("does-not-exist")
	assert.False(t, ok)
}
