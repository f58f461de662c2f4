package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSignalsAfterWrite(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatch([]string{dir})
	require.NoError(t, err)
	require.NotNil(t, w)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "s1.jsonl"), []byte("{}"), 0o644))

	select {
	case <-w.Signals():
	case <-time.After(5 * time.Second):
		t.Fatal("no signal after a write in a watched directory")
	}
}

func TestNewWatchWithNoWatchableDirs(t *testing.T) {
	w, err := NewWatch([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	require.NoError(t, err)
	assert.Nil(t, w, "no watchable dirs should yield a nil watch, not an error")
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	w, err := NewWatch([]string{t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, w)

	w.Close()
	w.Close()
}
