package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFileGivesZeroState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".session_state.json"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, state)
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".session_state.json"))

	err := store.Save(State{GeminiAPIKey: "key-1", Model: "gemini-2.5-pro"})
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "key-1", state.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", state.Model)
}

func TestStore_SaveMergesWithExistingState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".session_state.json"))

	require.NoError(t, store.Save(State{GeminiAPIKey: "gemini-key", Model: "gemini-2.5-pro"}))
	require.NoError(t, store.Save(State{ElevenLabsAPIKey: "voice-key"}))

	state, err := store.Load()
	require.NoError(t, err)

	// 空でないフィールドだけが更新され、既存の値は残る
	assert.Equal(t, "gemini-key", state.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-pro", state.Model)
	assert.Equal(t, "voice-key", state.ElevenLabsAPIKey)
}

func TestStore_SaveOverwritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path)
	require.NoError(t, store.Save(State{Model: "gpt-5-mini"}))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", state.Model)
}

func TestStore_JSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session_state.json")
	store := NewStore(path)

	require.NoError(t, store.Save(State{GeminiAPIKey: "k", Model: "m"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"api_key":"k"`)
	assert.Contains(t, string(data), `"model":"m"`)
}

func TestStore_SaveLastAnalysis(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".session_state.json"))

	require.NoError(t, store.Save(State{GeminiAPIKey: "key-1"}))
	require.NoError(t, store.Save(State{
		LastDiagram:  "digraph G { A -> B; }",
		LastRepoName: "octo/cat",
		LastStats:    &Stats{FilesProcessed: 12, TotalCharacters: 3400},
	}))

	state, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "key-1", state.GeminiAPIKey)
	assert.Equal(t, "digraph G { A -> B; }", state.LastDiagram)
	assert.Equal(t, "octo/cat", state.LastRepoName)
	require.NotNil(t, state.LastStats)
	assert.Equal(t, 12, state.LastStats.FilesProcessed)
}

func TestStore_ClearPending(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".session_state.json"))

	require.NoError(t, store.Save(State{
		Model:   "gemini-2.5-pro",
		Pending: &PendingRequest{RepoURL: "https://github.com/o/r", Model: "gemini-2.5-pro"},
	}))

	state, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, state.Pending)

	require.NoError(t, store.ClearPending())

	state, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, state.Pending)
	assert.Equal(t, "gemini-2.5-pro", state.Model)
}
