package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/abelbrown/tourist/internal/config"
	"github.com/abelbrown/tourist/internal/coord"
	"github.com/abelbrown/tourist/internal/event"
	"github.com/abelbrown/tourist/internal/flickr"
	"github.com/abelbrown/tourist/internal/logging"
	"github.com/abelbrown/tourist/internal/store"
)

// loadConfig reads config.json and .env, and routes logs to stderr.
func loadConfig(verbose bool) *config.Config {
	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	logging.InitWriter(os.Stderr, level)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.LoadDotEnv(".env"); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}
	return cfg
}

// openDB opens the store or fatals.
func openDB(cfg *config.Config) *store.Store {
	path := cfg.DBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// requireAPIKey exits when no Flickr key is configured.
func requireAPIKey(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		fmt.Fprintln(os.Stderr, "  export FLICKR_API_KEY=... or add it to .env")
		os.Exit(1)
	}
}

// newCoordinator builds a started coordinator for one command run.
func newCoordinator(ctx context.Context, cfg *config.Config, st *store.Store, bus *event.Bus) *coord.Coordinator {
	timeout := time.Duration(cfg.Flickr.TimeoutSeconds) * time.Second
	c := coord.NewCoordinator(st, flickr.NewClient(cfg.Flickr.APIKey, cfg.FlickrOptions()), bus, coord.Options{
		MaxConcurrentFetches: cfg.Hydration.MaxConcurrentFetches,
		SearchTimeout:        timeout,
		FetchTimeout:         timeout,
	})
	c.Start(ctx)
	return c
}

// signalContext is cancelled on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// requireArgs exits with usage text when fewer than n positional args remain.
func requireArgs(args []string, n int, synopsis string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "usage: vt %s\n", synopsis)
		os.Exit(2)
	}
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
