// Package config loads runtime settings for the blog server and the
// registration tool.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file passed to Load.
//  3. CMS_* environment variables (see applyEnv).
//
// The server additionally overlays its command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string `yaml:"addr"`
	UsersFile      string `yaml:"users_file"`
	SessionFile    string `yaml:"session_file"`
	PostsDir       string `yaml:"posts_dir"`
	UploadsDir     string `yaml:"uploads_dir"`
	TemplatesDir   string `yaml:"templates_dir"`
	SessionSecret  string `yaml:"session_secret"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	HashPasswords  bool   `yaml:"hash_passwords"`
	LogLevel       string `yaml:"log_level"`
}

// LoadDefaults sets file locations relative to the working directory.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.UsersFile = "users.json"
	c.SessionFile = "session.json"
	c.PostsDir = "posts"
	c.UploadsDir = "uploads"
	c.TemplatesDir = "templates"
	c.SessionSecret = ""
	c.MaxUploadBytes = 10 << 20
	c.HashPasswords = false
	c.LogLevel = "info"
}

// Load applies defaults, the YAML file at path (skipped when path is empty),
// then environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var logLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"addr":          c.Addr,
		"users_file":    c.UsersFile,
		"session_file":  c.SessionFile,
		"posts_dir":     c.PostsDir,
		"uploads_dir":   c.UploadsDir,
		"templates_dir": c.TemplatesDir,
	} {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	known := false
	for _, l := range logLevels {
		if strings.EqualFold(c.LogLevel, l) {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
