// ABOUTME: Entry point for the mailstore maintenance CLI
// ABOUTME: Offline init/inspect/quarantine commands over the backing files

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/coven-mailstore/internal/config"
	"github.com/2389/coven-mailstore/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the mailstore config file.
// Priority: MAILSTORE_CONFIG env var > ./mailstore.yaml > ~/.config/mailstore/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MAILSTORE_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("mailstore.yaml"); err == nil {
		return "mailstore.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "mailstore.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "mailstore", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mailstore <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  init        Create empty backing files in the data directory")
		fmt.Println("  inspect     Run admission and report index/quarantine statistics")
		fmt.Println("  quarantine  List quarantined records with reasons")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(ctx)
	case "inspect":
		err = runInspect(ctx)
	case "quarantine":
		err = runQuarantine(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file, falling back to defaults when none exists.
func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runInit(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.Open(ctx, cfg.Storage.DataDir, logger)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("  ▶ ")
	fmt.Printf("Data dir:  %s\n", cfg.Storage.DataDir)
	green.Print("  ▶ ")
	fmt.Printf("Messages:  %d\n", len(st.Snapshot(ctx)))
	green.Print("  ▶ ")
	fmt.Printf("Version:   %s\n", version)
	return nil
}

func runInspect(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.Open(ctx, cfg.Storage.DataDir, logger)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			red := color.New(color.FgRed, color.Bold)
			red.Fprintln(os.Stderr, "FATAL: dataset failed admission")
		}
		return err
	}

	msgs := st.Snapshot(ctx)
	quarantined := st.Quarantined(ctx)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("  ▶ ")
	fmt.Printf("Admitted:    %d\n", len(msgs))
	if len(quarantined) > 0 {
		yellow.Print("  ▶ ")
	} else {
		green.Print("  ▶ ")
	}
	fmt.Printf("Quarantined: %d\n", len(quarantined))

	reasons := make(map[string]int)
	for _, q := range quarantined {
		reasons[q.Reason]++
	}
	for reason, n := range reasons {
		fmt.Printf("      %dx %s\n", n, reason)
	}
	return nil
}

func runQuarantine(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.Open(ctx, cfg.Storage.DataDir, logger)
	if err != nil {
		return err
	}

	quarantined := st.Quarantined(ctx)
	if len(quarantined) == 0 {
		fmt.Println("quarantine is empty")
		return nil
	}

	yellow := color.New(color.FgYellow)
	for i, q := range quarantined {
		yellow.Printf("[%d] ", i+1)
		fmt.Printf("%s  %s\n", q.QuarantinedAt, q.Reason)
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
