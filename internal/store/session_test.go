package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewSessions(path)

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save("alice"))
	sess, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", sess.Username)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice"}`, string(data))

	require.NoError(t, s.Save("bob"))
	sess, _, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "bob", sess.Username)

	require.NoError(t, s.Clear())
	_, ok, err = s.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(), "clearing twice is a no-op")
}

func TestSessions_EmptyObjectIsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, ok, err := NewSessions(path).Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessions_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o600))

	_, _, err := NewSessions(path).Load()
	assert.Error(t, err)
}
