package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zippoxer/recall/internal/model"
)

func TestCodexParserCanParse(t *testing.T) {
	var p CodexParser
	assert.True(t, p.CanParse("/home/u/.codex/sessions/2026/01/30/rollout-1-abc.jsonl"))
	assert.False(t, p.CanParse("/home/u/.claude/projects/foo/bar.jsonl"))
}

func TestCodexParserSessionMetaAndMessages(t *testing.T) {
	dir := t.TempDir()
	lines := `{"type":"session_meta","timestamp":"2026-01-30T10:00:00Z","payload":{"id":"rollout-abc","cwd":"/home/u/proj","git":{"branch":"main"}}}
{"type":"response_item","timestamp":"2026-01-30T10:00:01Z","payload":{"role":"user","content":[{"type":"input_text","text":"what does this do"}]}}
{"type":"response_item","timestamp":"2026-01-30T10:00:02Z","payload":{"role":"assistant","content":[{"type":"output_text","text":"let me check"},{"type":"function_call","call_id":"call_1","name":"shell","arguments":"{\"cmd\":\"ls\"}"}]}}
{"type":"response_item","timestamp":"2026-01-30T10:00:03Z","payload":{"content":[{"type":"function_call_output","call_id":"call_1","output":"file1\nfile2"}]}}
`
	path := writeSession(t, dir, "rollout-abc.jsonl", lines)

	var p CodexParser
	sess, err := p.Parse(path, ReadContext{})
	require.NoError(t, err)

	assert.Equal(t, "rollout-abc", sess.ID)
	assert.Equal(t, "/home/u/proj", sess.Cwd)
	assert.Equal(t, "main", sess.GitBranch)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, model.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "what does this do", sess.Messages[0].Content)

	require.Len(t, sess.Messages[1].ToolCalls, 1)
	call := sess.Messages[1].ToolCalls[0]
	assert.Equal(t, "shell", call.Name)
	assert.Equal(t, model.ToolSuccess, call.Status)
	require.NotNil(t, call.Output)
	assert.Equal(t, "file1\nfile2", call.Output.Content)
}

func TestCodexParserInfersRoleFromContentType(t *testing.T) {
	dir := t.TempDir()
	lines := `{"type":"response_item","timestamp":"2026-01-30T10:00:00Z","payload":{"content":[{"type":"output_text","text":"inferred assistant turn"}]}}
`
	path := writeSession(t, dir, "rollout-infer.jsonl", lines)

	var p CodexParser
	sess, err := p.Parse(path, ReadContext{})
	require.NoError(t, err)

	require.Len(t, sess.Messages, 1)
	assert.Equal(t, model.RoleAssistant, sess.Messages[0].Role)
}
