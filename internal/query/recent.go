package query

import (
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/zippoxer/recall/internal/index"
	"github.com/zippoxer/recall/internal/model"
)

// recentFetchFactor covers sessions with many indexed messages: fetching
// only `limit` documents could return the same handful of sessions
// repeated, starving the listing of real variety.
const recentFetchFactor = 100

// Recent returns up to limit sessions ordered by timestamp descending, one
// result per session (its most recent message).
func (e *Engine) Recent(limit int) ([]model.SearchResult, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), limit*recentFetchFactor, 0, false)
	req.Fields = []string{
		index.FieldSessionID, index.FieldSource, index.FieldFilePath,
		index.FieldCwd, index.FieldGitBranch, index.FieldTimestamp, index.FieldContent,
	}
	req.SortBy([]string{"-" + index.FieldTimestamp})

	result, err := e.store.Reader().Search(req)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, limit)
	out := make([]model.SearchResult, 0, limit)
	for _, hit := range result.Hits {
		if len(out) >= limit {
			break
		}
		sessionID := stringField(hit.Fields, index.FieldSessionID)
		if sessionID == "" || seen[sessionID] {
			continue
		}
		seen[sessionID] = true

		content := stringField(hit.Fields, index.FieldContent)
		snippet := collapseNewlines(truncateRunes(content, snippetMaxChars))

		out = append(out, model.SearchResult{
			Session: model.Session{
				ID:        sessionID,
				Source:    parseSource(stringField(hit.Fields, index.FieldSource)),
				FilePath:  stringField(hit.Fields, index.FieldFilePath),
				Cwd:       stringField(hit.Fields, index.FieldCwd),
				GitBranch: stringField(hit.Fields, index.FieldGitBranch),
				Timestamp: time.Unix(int64Field(hit.Fields, index.FieldTimestamp), 0).UTC(),
			},
			Snippet: snippet,
		})
	}
	return out, nil
}
