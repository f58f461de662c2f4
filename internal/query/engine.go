// Package query implements the Query Engine (QE): ranked full-text search
// grouped by session, a recent-sessions listing, and session lookup by id.
package query

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	bquery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/zippoxer/recall/internal/index"
	"github.com/zippoxer/recall/internal/model"
)

// phraseBoost is the relevance multiplier applied to an exact phrase match
// over a multi-term query, stacked on top of the base disjunctive query.
const phraseBoost = 10.0

// recencyHalfLife is the time constant τ of the exp(-age/τ) recency bonus
// that gives recent sessions up to a 2x ranking advantage over older,
// equally relevant ones (the bonus halves after τ·ln 2, about 4.85 days).
const recencyHalfLife = 7 * 24 * time.Hour

const snippetMaxChars = 200

// Engine answers searches against a Store.
type Engine struct {
	store *index.Store
}

// New returns an Engine backed by store.
func New(store *index.Store) *Engine {
	return &Engine{store: store}
}

// Search tokenises query, runs a boosted-phrase-or-terms query over the
// content field, and returns up to limit results grouped by session and
// ranked by relevance combined with recency. An empty or whitespace-only
// query returns no results.
func (e *Engine) Search(query string, limit int) ([]model.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	q := buildQuery(trimmed)
	req := bleve.NewSearchRequestOptions(q, limit*10, 0, false)
	req.Fields = []string{
		index.FieldSessionID, index.FieldSource, index.FieldFilePath,
		index.FieldCwd, index.FieldGitBranch, index.FieldTimestamp,
		index.FieldMessageIndex, index.FieldContent,
	}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{index.FieldContent}

	result, err := e.store.Reader().Search(req)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		effective float64
		maxTs     int64
		result    model.SearchResult
	}
	bySession := make(map[string]*ranked, len(result.Hits))

	for _, hit := range result.Hits {
		sessionID := stringField(hit.Fields, index.FieldSessionID)
		if sessionID == "" {
			continue
		}
		messageIndex := intField(hit.Fields, index.FieldMessageIndex)
		ts := int64Field(hit.Fields, index.FieldTimestamp)

		// Later messages within a session break score ties, so the best hit
		// of a session tends toward its most recent mention of the query.
		effective := hit.Score + 0.01*float64(messageIndex)

		if existing, ok := bySession[sessionID]; ok {
			if ts > existing.maxTs {
				existing.maxTs = ts
			}
			if existing.effective >= effective {
				continue
			}
		}

		content := stringField(hit.Fields, index.FieldContent)
		snippet, fragment, spans := highlightSnippet(hit.Fragments[index.FieldContent], content)

		entry := &ranked{
			effective: effective,
			maxTs:     ts,
			result: model.SearchResult{
				Session: model.Session{
					ID:        sessionID,
					Source:    parseSource(stringField(hit.Fields, index.FieldSource)),
					FilePath:  stringField(hit.Fields, index.FieldFilePath),
					Cwd:       stringField(hit.Fields, index.FieldCwd),
					GitBranch: stringField(hit.Fields, index.FieldGitBranch),
				},
				Score:               hit.Score,
				MatchedMessageIndex: messageIndex,
				Snippet:             snippet,
				MatchSpans:          spans,
				MatchFragment:       fragment,
			},
		}
		if existing, ok := bySession[sessionID]; ok {
			entry.maxTs = existing.maxTs
		}
		bySession[sessionID] = entry
	}

	out := make([]model.SearchResult, 0, len(bySession))
	for _, r := range bySession {
		// The session's timestamp is the newest message seen among its hits;
		// the ranking multiplier below wants session age, not match age.
		r.result.Session.Timestamp = time.Unix(r.maxTs, 0).UTC()
		out = append(out, r.result)
	}

	sortByFinalScore(out, time.Now().UTC())
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// buildQuery builds the ranking pipeline's query: a base disjunctive match
// over the content field's tokens, OR'd with a heavily boosted phrase query
// when the input has more than one term.
func buildQuery(text string) bquery.Query {
	base := bleve.NewMatchQuery(text)
	base.SetField(index.FieldContent)

	if len(strings.Fields(text)) <= 1 {
		return base
	}

	phrase := bleve.NewMatchPhraseQuery(text)
	phrase.SetField(index.FieldContent)
	phrase.SetBoost(phraseBoost)

	return bleve.NewDisjunctionQuery(phrase, base)
}

// sortByFinalScore ranks results by score * (1 + exp(-age/halfLife)),
// descending, tie-broken by session id so equal-scoring results come back in
// a stable order. Age is clamped to zero for sessions timestamped in the
// future (clock skew, or test fixtures).
func sortByFinalScore(results []model.SearchResult, now time.Time) {
	finals := make(map[string]float64, len(results))
	for _, r := range results {
		age := now.Sub(r.Session.Timestamp).Seconds()
		if age < 0 {
			age = 0
		}
		recency := 1 + math.Exp(-age/recencyHalfLife.Seconds())
		finals[r.Session.ID] = r.Score * recency
	}
	sort.Slice(results, func(i, j int) bool {
		fi, fj := finals[results[i].Session.ID], finals[results[j].Session.ID]
		if fi != fj {
			return fi > fj
		}
		return results[i].Session.ID < results[j].Session.ID
	})
}

func parseSource(s string) model.Source {
	src, ok := model.ParseSource(s)
	if !ok {
		return model.SourceClaude
	}
	return src
}

func stringField(fields map[string]interface{}, name string) string {
	v, ok := fields[name].(string)
	if !ok {
		return ""
	}
	return v
}

func intField(fields map[string]interface{}, name string) int {
	return int(int64Field(fields, name))
}

func int64Field(fields map[string]interface{}, name string) int64 {
	switch v := fields[name].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
