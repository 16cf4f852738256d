package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Add(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", baseHistory)
	h := NewHistory(path)

	require.NoError(t, h.Load())
	assert.Zero(t, h.Len())

	require.NoError(t, h.Add("1 + 2", modeEval))
	require.NoError(t, h.Add("vars", modeCtrl))
	require.NoError(t, h.Add("vars", modeCtrl))
	require.NoError(t, h.Add("  ", modeEval))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "E:1 + 2\nC:vars\n", string(data))

	// An earlier duplicate moves to the end and the file is rewritten.
	require.NoError(t, h.Add("1 + 2", modeEval))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "C:vars\nE:1 + 2\n", string(data))

	// The same line in another mode is a distinct entry.
	require.NoError(t, h.Add("vars", modeEval))
	assert.Equal(t, 3, h.Len())
}

func TestHistory_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	require.NoError(t, os.WriteFile(path, []byte("E:a|upper\n\nC:help\nlegacy\n"), 0o600))

	h := NewHistory(path)
	require.NoError(t, h.Load())

	assert.Equal(t, []HistoryEntry{
		{Line: "a|upper", Mode: modeEval},
		{Line: "help", Mode: modeCtrl},
		{Line: "legacy", Mode: modeEval},
	}, h.Entries())

	e, err := h.Get(1)
	require.NoError(t, err)
	assert.Equal(t, HistoryEntry{Line: "help", Mode: modeCtrl}, e)

	for _, i := range []int{-1, 3} {
		if _, err := h.Get(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Get(%d): expected ErrOutOfBounds, got %v", i, err)
		}
	}
}

func TestHistory_Memory(t *testing.T) {
	h := NewHistory("")

	require.NoError(t, h.Load())
	require.NoError(t, h.Add("x", modeEval))
	assert.Equal(t, 1, h.Len())
}
