package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/galley/internal/api"
	"github.com/five82/galley/internal/config"
	"github.com/five82/galley/internal/markdown"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/prefs"
	"github.com/five82/galley/internal/session"
	"github.com/five82/galley/internal/storage"
	"github.com/five82/galley/internal/ui"
)

// Options configure the galley application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/galley/prefs.toml
	StartPath  string // initial route, "/recipes" when empty
}

// Run boots the galley TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	kv, err := storage.Open(cfg.StoragePath())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = kv.Close() }()

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	// The session logs in through the anonymous client; everything else goes
	// through the authenticated copy.
	store := session.New(kv, client, logger.With("component", "session"))
	authed := client.WithCredentials(store)
	resolver := photo.NewResolver(authed, photo.NewObjects(), logger.With("component", "photo"))

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	logger.Info("galley starting", "api", client.BaseURL(), "data_dir", cfg.DataDir)
	return ui.Run(ui.Options{
		Context:   ctx,
		Service:   authed,
		Session:   store,
		Resolver:  resolver,
		Renderer:  markdown.NewRenderer("dark"),
		Logger:    logger.With("component", "ui"),
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		ExportDir: cfg.ExportDir(),
		StartPath: opts.StartPath,
	})
}

// openLogger writes structured logs to the data directory; the terminal
// belongs to the UI.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return logger, func() { _ = f.Close() }, nil
}
