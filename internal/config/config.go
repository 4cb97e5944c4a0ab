package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is galley's runtime configuration.
type Config struct {
	APIURL         string
	DataDir        string
	LogLevel       slog.Level
	RequestTimeout time.Duration
}

const (
	defaultConfigPath     = "~/.config/galley/config.toml"
	defaultDataDir        = "~/.local/share/galley"
	defaultAPIURL         = "http://localhost:6969/api"
	defaultRequestTimeout = 10 * time.Second

	envAPIURL   = "GALLEY_API_URL"
	envLogLevel = "GALLEY_LOG_LEVEL"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config at path (the default location when empty), applying
// defaults for missing values and environment overrides on top. A .env file
// in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		DataDir        string `toml:"data_dir"`
		LogLevel       string `toml:"log_level"`
		RequestTimeout string `toml:"request_timeout"`
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(envAPIURL)); v != "" {
		raw.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		raw.LogLevel = v
	}

	cfg := Config{
		APIURL:         strings.TrimSpace(raw.APIURL),
		DataDir:        strings.TrimSpace(raw.DataDir),
		RequestTimeout: defaultRequestTimeout,
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)

	if cfg.LogLevel, err = parseLevel(raw.LogLevel); err != nil {
		return Config{}, err
	}
	if s := strings.TrimSpace(raw.RequestTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("parse config: invalid request_timeout %q", s)
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}

// StoragePath returns the sqlite database holding the persisted session.
func (c Config) StoragePath() string {
	return filepath.Join(c.dataDir(), "storage.db")
}

// LogPath returns galley's own log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "galley.log")
}

// ExportDir returns where HTML exports are written.
func (c Config) ExportDir() string {
	return filepath.Join(c.dataDir(), "exports")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func parseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse config: invalid log_level %q", s)
	}
	return level, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
