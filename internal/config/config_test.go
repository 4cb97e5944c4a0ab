package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envAPIURL, "")
	t.Setenv(envLogLevel, "")
	chdir(t, t.TempDir())
	return home
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("LogLevel = %v RequestTimeout = %v, want info/10s", cfg.LogLevel, cfg.RequestTimeout)
	}
	if cfg.StoragePath() != filepath.Join(wantDataDir, "storage.db") {
		t.Fatalf("StoragePath = %q", cfg.StoragePath())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://recipes.example.com/api  "
data_dir = "  ~/galley-data  "
log_level = "debug"
request_timeout = "3s"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://recipes.example.com/api" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("LogLevel = %v RequestTimeout = %v", cfg.LogLevel, cfg.RequestTimeout)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "galley.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
	if cfg.ExportDir() != filepath.Join(cfg.DataDir, "exports") {
		t.Fatalf("ExportDir = %q", cfg.ExportDir())
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(envAPIURL, "http://10.0.0.5:8080/api")
	t.Setenv(envLogLevel, "warn")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://ignored/api"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.5:8080/api" || cfg.LogLevel != slog.LevelWarn {
		t.Fatalf("cfg = %#v, want env overrides", cfg)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GALLEY_API_URL=http://dotenv:1/api\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// godotenv does not override variables that are already set, even empty.
	if err := os.Unsetenv(envAPIURL); err != nil {
		t.Fatalf("Unsetenv: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv(envAPIURL) })

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://dotenv:1/api" {
		t.Fatalf("APIURL = %q, want value from .env", cfg.APIURL)
	}
}

func TestLoad_InvalidValuesError(t *testing.T) {
	isolate(t)

	for name, body := range map[string]string{
		"toml":    "api_url = [",
		"level":   `log_level = "loud"`,
		"timeout": `request_timeout = "soon"`,
	} {
		path := filepath.Join(t.TempDir(), name+".toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("Load(%s) succeeded, want error", name)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/foo")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "foo") {
		t.Fatalf("expandPath = %q, want %q", got, filepath.Join(home, "foo"))
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath(blank) succeeded, want error")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
