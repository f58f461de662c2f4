package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectorBareSessionID(t *testing.T) {
	s, err := parseSelector("abc123")
	require.NoError(t, err)
	assert.Equal(t, selectorSession, s.kind)
	assert.Equal(t, "abc123", s.sessionID)
}

func TestParseSelectorSingleMessage(t *testing.T) {
	s, err := parseSelector("abc123:3")
	require.NoError(t, err)
	assert.Equal(t, selectorSingle, s.kind)
	assert.Equal(t, "abc123", s.sessionID)
	assert.Equal(t, 3, s.single)
}

func TestParseSelectorRange(t *testing.T) {
	s, err := parseSelector("abc123:2-5")
	require.NoError(t, err)
	assert.Equal(t, selectorRange, s.kind)
	assert.Equal(t, 2, s.rangeLo)
	assert.Equal(t, 5, s.rangeHi)
}

func TestParseSelectorLastN(t *testing.T) {
	s, err := parseSelector("abc123:-5")
	require.NoError(t, err)
	assert.Equal(t, selectorLast, s.kind)
	assert.Equal(t, 5, s.last)
}

func TestParseSelectorErrors(t *testing.T) {
	s, err := parseSelector("abc123:errors")
	require.NoError(t, err)
	assert.Equal(t, selectorErrors, s.kind)
	assert.Equal(t, "abc123", s.sessionID)
}

func TestParseSelectorTool(t *testing.T) {
	s, err := parseSelector("abc123:4.2")
	require.NoError(t, err)
	assert.Equal(t, selectorTool, s.kind)
	assert.Equal(t, 4, s.msgIdx)
	assert.Equal(t, 2, s.toolIdx)
}

func TestParseSelectorEmptyInput(t *testing.T) {
	_, err := parseSelector("")
	assert.Error(t, err)
}

func TestParseSelectorInvalidSingle(t *testing.T) {
	_, err := parseSelector("abc123:x")
	assert.Error(t, err)
}

func TestParseSelectorInvalidRange(t *testing.T) {
	_, err := parseSelector("abc123:2-x")
	assert.Error(t, err)
}

func TestParseSelectorInvalidTool(t *testing.T) {
	_, err := parseSelector("abc123:4.x")
	assert.Error(t, err)
}

func TestParseSelectorTrimsWhitespace(t *testing.T) {
	s, err := parseSelector("  abc123  ")
	require.NoError(t, err)
	assert.Equal(t, selectorSession, s.kind)
	assert.Equal(t, "abc123", s.sessionID)
}
