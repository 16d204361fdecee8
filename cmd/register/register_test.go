package main

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minicms/internal/store"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func newUsers(t *testing.T) *store.Credentials {
	t.Helper()
	return store.NewCredentials(filepath.Join(t.TempDir(), "users.json"), false)
}

func TestRun_RegistersUser(t *testing.T) {
	users := newUsers(t)
	var out bytes.Buffer

	require.NoError(t, run(rdr("alice\nsecret1\n"), &out, users))

	assert.Equal(t, promptUsername+promptPassword+msgSuccess+"\n", out.String())
	ok, err := users.Authenticate("alice", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_RepromptsOnDuplicate(t *testing.T) {
	users := newUsers(t)
	require.NoError(t, users.Register("alice", "first"))
	var out bytes.Buffer

	require.NoError(t, run(rdr("alice\nalice\nbob\npw\n"), &out, users))

	assert.Equal(t, 2, strings.Count(out.String(), msgTaken))
	all, err := users.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "first", "bob": "pw"}, all)
}

func TestRun_PasswordWithoutTrailingNewline(t *testing.T) {
	users := newUsers(t)
	var out bytes.Buffer

	require.NoError(t, run(rdr("carol\n with spaces "), &out, users))

	all, err := users.Load()
	require.NoError(t, err)
	assert.Equal(t, " with spaces ", all["carol"], "passwords are stored exactly as typed")
}

func TestRun_EOFBeforePassword(t *testing.T) {
	users := newUsers(t)
	var out bytes.Buffer

	err := run(rdr("dave\n"), &out, users)
	require.Error(t, err)

	ok, err := users.Exists("dave")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun_EOFImmediately(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(rdr(""), &out, newUsers(t)))
}

func TestReadLine_CRLF(t *testing.T) {
	var out bytes.Buffer
	got, err := readLine(rdr("name\r\n"), &out, "Name? ")
	require.NoError(t, err)
	assert.Equal(t, "name", got)
	assert.Equal(t, "Name? ", out.String())
}
