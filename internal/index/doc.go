// Package index wraps the embedded bleve full-text engine behind the
// schema the session indexer and query engine share: one document per
// message, a single batch writer owned by the indexer, and searches that
// only ever observe fully committed batches.
package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/zippoxer/recall/internal/model"
)

// Field name constants shared with the query package, so query construction
// and result field extraction never drift from the mapping below.
const (
	FieldSessionID    = "session_id"
	FieldSource       = "source"
	FieldFilePath     = "file_path"
	FieldCwd          = "cwd"
	FieldGitBranch    = "git_branch"
	FieldTimestamp    = "timestamp"
	FieldMessageIndex = "message_index"
	FieldContent      = "content"
)

// Doc is the indexed shape of one Message, flattened with its owning
// Session's metadata. session_id/source/file_path/cwd/git_branch are
// stored keyword fields, indexed whole (untokenised) so term queries can
// match them exactly; timestamp is indexed, stored and sortable;
// message_index is stored only; content is the sole analyzed field.
type Doc struct {
	SessionID    string `json:"session_id"`
	Source       string `json:"source"`
	FilePath     string `json:"file_path"`
	Cwd          string `json:"cwd"`
	GitBranch    string `json:"git_branch"`
	Timestamp    int64  `json:"timestamp"`
	MessageIndex int    `json:"message_index"`
	Content      string `json:"content"`
}

// DocsForSession flattens a Session into its per-message Doc slice, the
// shape IndexSession indexes and the query engine later reconstructs
// SearchResults from. Each doc carries its own message's timestamp (the
// recents listing sorts on it to surface a session's latest message first);
// messages without one inherit the session timestamp.
func DocsForSession(s model.Session) []Doc {
	docs := make([]Doc, len(s.Messages))
	for i, m := range s.Messages {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = s.Timestamp
		}
		docs[i] = Doc{
			SessionID:    s.ID,
			Source:       s.Source.String(),
			FilePath:     s.FilePath,
			Cwd:          s.Cwd,
			GitBranch:    s.GitBranch,
			Timestamp:    ts.Unix(),
			MessageIndex: i,
			Content:      m.Content,
		}
	}
	return docs
}

// buildMapping constructs the index mapping matching Doc's field shapes.
func buildMapping() mapping.IndexMapping {
	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.IncludeInAll = false

	timestamp := bleve.NewNumericFieldMapping()
	timestamp.Store = true
	timestamp.Index = true
	timestamp.IncludeInAll = false

	messageIndex := bleve.NewNumericFieldMapping()
	messageIndex.Store = true
	messageIndex.Index = false
	messageIndex.IncludeInAll = false

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "en"
	content.Store = true
	content.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldSessionID, keyword)
	doc.AddFieldMappingsAt(FieldSource, keyword)
	doc.AddFieldMappingsAt(FieldFilePath, keyword)
	doc.AddFieldMappingsAt(FieldCwd, keyword)
	doc.AddFieldMappingsAt(FieldGitBranch, keyword)
	doc.AddFieldMappingsAt(FieldTimestamp, timestamp)
	doc.AddFieldMappingsAt(FieldMessageIndex, messageIndex)
	doc.AddFieldMappingsAt(FieldContent, content)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = "en"
	return im
}
