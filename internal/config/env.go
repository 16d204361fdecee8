package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvConfigPath names the variable the registration tool reads its config
// file location from.
const EnvConfigPath = "CMS_CONFIG"

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"CMS_ADDR":           &c.Addr,
		"CMS_USERS_FILE":     &c.UsersFile,
		"CMS_SESSION_FILE":   &c.SessionFile,
		"CMS_POSTS_DIR":      &c.PostsDir,
		"CMS_UPLOADS_DIR":    &c.UploadsDir,
		"CMS_TEMPLATES_DIR":  &c.TemplatesDir,
		"CMS_SESSION_SECRET": &c.SessionSecret,
		"CMS_LOG_LEVEL":      &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("CMS_MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CMS_MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v, ok := os.LookupEnv("CMS_HASH_PASSWORDS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CMS_HASH_PASSWORDS: %w", err)
		}
		c.HashPasswords = b
	}
	return nil
}
