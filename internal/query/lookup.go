package query

import (
	"github.com/blevesearch/bleve/v2"

	"github.com/zippoxer/recall/internal/index"
)

// GetByID returns the on-disk file path for sessionID, or "", false if no
// document carries that session_id.
func (e *Engine) GetByID(sessionID string) (string, bool) {
	q := bleve.NewTermQuery(sessionID)
	q.SetField(index.FieldSessionID)

	req := bleve.NewSearchRequestOptions(q, 1, 0, false)
	req.Fields = []string{index.FieldFilePath}

	result, err := e.store.Reader().Search(req)
	if err != nil || len(result.Hits) == 0 {
		return "", false
	}
	return stringField(result.Hits[0].Fields, index.FieldFilePath), true
}
