package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zippoxer/recall/internal/model"
)

func TestFactoryParserCanParse(t *testing.T) {
	var p FactoryParser
	assert.True(t, p.CanParse("/home/u/.factory/sessions/-Users-zippo-code-recall/abc.jsonl"))
	assert.False(t, p.CanParse("/home/u/.codex/sessions/abc.jsonl"))
}

func TestFactoryParserBasic(t *testing.T) {
	dir := t.TempDir()
	lines := `{"type":"session_start","id":"fsess-1","cwd":"/Users/zippo/code/recall"}
{"type":"message","timestamp":"2026-01-30T10:00:00Z","message":{"role":"user","content":[{"type":"text","text":"hello factory"}]}}
{"type":"message","timestamp":"2026-01-30T10:00:01Z","message":{"role":"assistant","content":[{"type":"text","text":"hi"},{"type":"tool_use","id":"tu_9","name":"Read","input":{}}]}}
{"type":"message","timestamp":"2026-01-30T10:00:02Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_9","content":"contents","is_error":false}]}}
`
	path := writeSession(t, dir, "abc.jsonl", lines)

	var p FactoryParser
	sess, err := p.Parse(path, ReadContext{})
	require.NoError(t, err)

	assert.Equal(t, "fsess-1", sess.ID)
	assert.Equal(t, "/Users/zippo/code/recall", sess.Cwd)
	assert.Equal(t, model.SourceFactory, sess.Source)
	require.Len(t, sess.Messages, 2)
	require.Len(t, sess.Messages[1].ToolCalls, 1)
	assert.Equal(t, model.ToolSuccess, sess.Messages[1].ToolCalls[0].Status)
}

func TestFactoryParserCwdFallbackFromDirName(t *testing.T) {
	dir := t.TempDir()
	projectDir := dir + "/-Users-zippo-code-recall"
	lines := `{"type":"message","timestamp":"2026-01-30T10:00:00Z","message":{"role":"user","content":[{"type":"text","text":"hi"}]}}
`
	path := writeSession(t, projectDir, "abc.jsonl", lines)

	var p FactoryParser
	sess, err := p.Parse(path, ReadContext{})
	require.NoError(t, err)
	assert.Equal(t, "/Users/zippo/code/recall", sess.Cwd)
}

func TestFactoryParserFiltersSystemReminder(t *testing.T) {
	dir := t.TempDir()
	lines := `{"type":"message","timestamp":"2026-01-30T10:00:00Z","message":{"role":"user","content":[{"type":"text","text":"<system-reminder>\nnoise\n</system-reminder>"}]}}
{"type":"message","timestamp":"2026-01-30T10:00:01Z","message":{"role":"user","content":[{"type":"text","text":"real input"}]}}
`
	path := writeSession(t, dir, "abc.jsonl", lines)

	var p FactoryParser
	sess, err := p.Parse(path, ReadContext{})
	require.NoError(t, err)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "real input", sess.Messages[0].Content)
}
