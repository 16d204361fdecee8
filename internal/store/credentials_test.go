package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_LoadMissingFile(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)

	users, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestCredentials_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewCredentials(path, false).Load()
	require.Error(t, err)
}

func TestCredentials_SaveReplacesFile(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)

	require.NoError(t, c.Save(map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, c.Save(map[string]string{"c": "3"}))

	users, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": "3"}, users)
}

const hashLookalike = "$2a$10$abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0"

func TestCredentials_Authenticate(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)
	require.NoError(t, c.Register("alice", "secret1"))
	require.True(t, isBcryptHash(hashLookalike))
	require.NoError(t, c.Register("eve", hashLookalike))

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "exact match", username: "alice", password: "secret1", want: true},
		{name: "wrong password", username: "alice", password: "wrong", want: false},
		{name: "case differs", username: "alice", password: "Secret1", want: false},
		{name: "username case differs", username: "Alice", password: "secret1", want: false},
		{name: "unknown user", username: "bob", password: "secret1", want: false},
		{name: "empty password", username: "alice", password: "", want: false},
		{name: "password shaped like a bcrypt hash", username: "eve", password: hashLookalike, want: true},
		{name: "wrong password for hash-shaped entry", username: "eve", password: "secret1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := c.Authenticate(tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCredentials_RegisterStoresPlaintext(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)
	require.NoError(t, c.Register("alice", "secret1"))

	users, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret1", users["alice"])
}

func TestCredentials_RegisterDuplicate(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)
	require.NoError(t, c.Register("alice", "secret1"))

	err := c.Register("alice", "other")
	require.ErrorIs(t, err, ErrUserExists)

	ok, err := c.Authenticate("alice", "secret1")
	require.NoError(t, err)
	assert.True(t, ok, "original password must survive a rejected duplicate")
}

func TestCredentials_HashedRegistration(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), true)
	require.NoError(t, c.Register("alice", "secret1"))

	users, err := c.Load()
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", users["alice"])
	assert.True(t, isBcryptHash(users["alice"]))

	ok, err := c.Authenticate("alice", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Authenticate("alice", users["alice"])
	require.NoError(t, err)
	assert.False(t, ok, "the hash itself is not a password")
}

func TestCredentials_PlaintextStoreReadsHashedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, NewCredentials(path, true).Register("alice", "secret1"))

	ok, err := NewCredentials(path, false).Authenticate("alice", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCredentials_Exists(t *testing.T) {
	c := NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)
	require.NoError(t, c.Register("alice", "x"))

	ok, err := c.Exists("alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists("bob")
	require.NoError(t, err)
	assert.False(t, ok)
}
