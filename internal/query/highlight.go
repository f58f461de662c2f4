package query

import (
	"strings"

	"github.com/zippoxer/recall/internal/model"
)

const highlightOpen = "<mark>"
const highlightClose = "</mark>"

// highlightSnippet turns one of bleve's HTML-highlighted fragments (matched
// terms wrapped in <mark>...</mark>) into the three representations
// SearchResult needs: a display snippet with newlines collapsed, a
// newline-preserving fragment for locating the match in a wrapped preview,
// and the byte ranges (in the stripped snippet) to highlight.
//
// Falls back to the first snippetMaxChars of content, unhighlighted, when
// bleve returned no fragment for this hit (can happen for phrase-only
// matches the highlighter doesn't independently locate).
func highlightSnippet(fragments []string, content string) (snippet, fragment string, spans []model.MatchSpan) {
	if len(fragments) == 0 {
		fragment = truncateRunes(content, snippetMaxChars)
		return collapseNewlines(fragment), fragment, nil
	}

	plain, matchSpans := stripHighlightTags(fragments[0])
	return collapseNewlines(plain), plain, matchSpans
}

// stripHighlightTags removes <mark>/</mark> wrappers from s and returns the
// plain text alongside the byte ranges that were wrapped.
func stripHighlightTags(s string) (string, []model.MatchSpan) {
	var b strings.Builder
	var spans []model.MatchSpan
	var openAt int
	inMark := false

	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], highlightOpen) {
			inMark = true
			openAt = b.Len()
			i += len(highlightOpen)
			continue
		}
		if strings.HasPrefix(s[i:], highlightClose) {
			if inMark {
				spans = append(spans, model.MatchSpan{Start: openAt, End: b.Len()})
			}
			inMark = false
			i += len(highlightClose)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), spans
}

// collapseNewlines is byte-length preserving ("\r\n" becomes two spaces) so
// match spans computed against the raw fragment stay valid in the snippet.
func collapseNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
