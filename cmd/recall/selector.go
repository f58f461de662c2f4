package main

import (
	"fmt"
	"strconv"
	"strings"
)

// selectorKind discriminates the forms of the read selector grammar: a bare
// session id, a message/range/last-N/errors selector within a session, or a
// specific tool call on a message.
type selectorKind int

const (
	selectorSession selectorKind = iota
	selectorSingle
	selectorRange
	selectorLast
	selectorErrors
	selectorTool
)

// selector is the parsed form of a read CLI target. Fields beyond
// sessionID are only meaningful for the kind that populates them; message
// indices are 1-based, matching the CLI grammar.
type selector struct {
	kind      selectorKind
	sessionID string
	single    int
	rangeLo   int
	rangeHi   int
	last      int
	msgIdx    int
	toolIdx   int
}

// parseSelector splits the input on the first colon, then disambiguates the
// remainder by scanning for "errors", a "." (tool selector), or a "-"
// (range or "last N") before falling back to a single message index.
func parseSelector(input string) (selector, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return selector{}, fmt.Errorf("empty selector")
	}

	colon := strings.IndexByte(input, ':')
	if colon < 0 {
		return selector{kind: selectorSession, sessionID: input}, nil
	}

	sessionID := input[:colon]
	rest := input[colon+1:]

	if rest == "errors" {
		return selector{kind: selectorErrors, sessionID: sessionID}, nil
	}

	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		msgPart, toolPart := rest[:dot], rest[dot+1:]
		msgIdx, err := strconv.Atoi(msgPart)
		if err != nil {
			return selector{}, fmt.Errorf("invalid message index: %q", msgPart)
		}
		toolIdx, err := strconv.Atoi(toolPart)
		if err != nil {
			return selector{}, fmt.Errorf("invalid tool index: %q", toolPart)
		}
		return selector{kind: selectorTool, sessionID: sessionID, msgIdx: msgIdx, toolIdx: toolIdx}, nil
	}

	if dash := strings.IndexByte(rest, '-'); dash >= 0 {
		if dash == 0 {
			n, err := strconv.Atoi(rest[1:])
			if err != nil {
				return selector{}, fmt.Errorf("invalid last-N count: %q", rest)
			}
			return selector{kind: selectorLast, sessionID: sessionID, last: n}, nil
		}
		lo, err := strconv.Atoi(rest[:dash])
		if err != nil {
			return selector{}, fmt.Errorf("invalid range: %q", rest)
		}
		hi, err := strconv.Atoi(rest[dash+1:])
		if err != nil {
			return selector{}, fmt.Errorf("invalid range: %q", rest)
		}
		return selector{kind: selectorRange, sessionID: sessionID, rangeLo: lo, rangeHi: hi}, nil
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return selector{}, fmt.Errorf("invalid message index: %q", rest)
	}
	return selector{kind: selectorSingle, sessionID: sessionID, single: n}, nil
}
