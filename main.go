// Command minicms serves a small Markdown blog: logged-in users publish posts
// with labels and an optional image, and browse them by label or search text.
// Posts, credentials and the remembered login live in JSON files.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minicms/internal/config"
)

const (
	Version = "0.1.0"
	appName = "minicms"

	idPattern = "{id:[A-Za-z0-9_-]+}"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Markdown blog with labels and search",
		Long: `minicms serves the blog UI over HTTP.

Users are added with the separate register tool. Posts are stored one JSON
file per post; images sit next to them in the uploads directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func (a *app) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.logRequests, a.metrics.middleware)

	r.HandleFunc("/", a.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/login", a.loginHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", a.logoutHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/search", a.withUser(a.searchHandler)).Methods(http.MethodPost)
	r.HandleFunc("/filter/label", a.withUser(a.labelFilterHandler)).Methods(http.MethodPost)
	r.HandleFunc("/filter/clear", a.withUser(a.clearFiltersHandler)).Methods(http.MethodPost)
	r.HandleFunc("/posts", a.withUser(a.createPostHandler)).Methods(http.MethodPost)
	r.HandleFunc("/posts/"+idPattern+"/edit", a.withUser(a.editPostHandler)).Methods(http.MethodPost)
	r.HandleFunc("/posts/"+idPattern+"/delete", a.withUser(a.deletePostHandler)).Methods(http.MethodPost)
	r.HandleFunc("/uploads/"+idPattern+".png", a.withUser(a.uploadHandler)).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.handler()).Methods(http.MethodGet)

	return r
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("version", Version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
