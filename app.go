package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorilla/sessions"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	"go.uber.org/zap"

	"minicms/internal/config"
	"minicms/internal/store"
)

// app carries the stores and collaborators every handler needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	users    *store.Credentials
	sessions *store.Sessions
	posts    *store.Posts
	uploads  *store.Uploads
	cookies  *sessions.CookieStore
	tmpl     *exec.Template
	metrics  *metrics
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	for _, dir := range []string{cfg.PostsDir, cfg.UploadsDir} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	tmpl, err := gonja.FromFile(filepath.Join(cfg.TemplatesDir, "index.html"))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	uploads := store.NewUploads(cfg.UploadsDir)
	return &app{
		cfg:      cfg,
		log:      log,
		users:    store.NewCredentials(cfg.UsersFile, cfg.HashPasswords),
		sessions: store.NewSessions(cfg.SessionFile),
		posts:    store.NewPosts(cfg.PostsDir, uploads),
		uploads:  uploads,
		cookies:  newCookieStore(cfg.SessionSecret, log),
		tmpl:     tmpl,
		metrics:  newMetrics(),
	}, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
