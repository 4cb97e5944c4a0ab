package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/galley/internal/app"
	"github.com/five82/galley/internal/config"
	"github.com/five82/galley/internal/logtail"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/galley/config.toml)")
	startPath := flag.String("open", "", "route to open at start, e.g. /recipes/42 (optional)")
	logLines := flag.Int("logs", 0, "print the last N log entries and exit")
	logLevel := flag.String("logs-level", "info", "minimum level for -logs")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("galley", version)
		return 0
	}
	if *logLines > 0 {
		return printLogs(*configPath, *logLines, *logLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, StartPath: *startPath}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "galley: %v\n", err)
		return 1
	}
	return 0
}

func printLogs(configPath string, n int, level string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "galley: load config: %v\n", err)
		return 1
	}
	var minLevel slog.Level
	if err := minLevel.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "galley: invalid -logs-level %q\n", level)
		return 2
	}
	lines, err := logtail.Read(cfg.LogPath(), n, minLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "galley: %v\n", err)
		return 1
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return 0
}
