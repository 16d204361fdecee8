package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "users.json", c.UsersFile)
	assert.Equal(t, "session.json", c.SessionFile)
	assert.Equal(t, "posts", c.PostsDir)
	assert.Equal(t, "uploads", c.UploadsDir)
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes)
	assert.False(t, c.HashPasswords)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "posts", cfg.PostsDir)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeTempYAML(t, "addr: 127.0.0.1:9000\nposts_dir: /srv/posts\nhash_passwords: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/srv/posts", cfg.PostsDir)
	assert.True(t, cfg.HashPasswords)
	assert.Equal(t, "uploads", cfg.UploadsDir, "unset keys keep defaults")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeTempYAML(t, "addr: 127.0.0.1:9000\n")
	t.Setenv("CMS_ADDR", ":7000")
	t.Setenv("CMS_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CMS_HASH_PASSWORDS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.HashPasswords)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeTempYAML(t, "addr: [\n"))
		assert.Error(t, err)
	})
	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("CMS_MAX_UPLOAD_BYTES", "lots")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.PostsDir = " "
	c.MaxUploadBytes = 0
	c.LogLevel = "loud"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts_dir")
	assert.Contains(t, err.Error(), "max_upload_bytes")
	assert.Contains(t, err.Error(), "loud")
}
