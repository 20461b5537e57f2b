package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/abelbrown/booklegend/internal/catalog"
	"github.com/abelbrown/booklegend/internal/config"
	"github.com/abelbrown/booklegend/internal/logging"
	"github.com/abelbrown/booklegend/internal/prefs"
)

// setup loads config and starts file logging, or fatals.
func setup() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	if err := logging.Init(cfg.DataDir, cfg.LogLevel); err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	return cfg
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// newClient builds a catalog client from cfg.
func newClient(cfg *config.Config) *catalog.Client {
	return catalog.NewClient(catalog.Options{
		BaseURL:           cfg.APIBaseURL,
		CoverHost:         cfg.CoverHost,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}

// openStore opens the preference store or fatals.
func openStore(cfg *config.Config) *prefs.Store {
	st, err := prefs.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// requireArg returns the first positional argument or exits with usage.
func requireArg(args []string, what string) string {
	if len(args) < 1 || args[0] == "" {
		fmt.Fprintf(os.Stderr, "error: %s is required\n", what)
		os.Exit(2)
	}
	return args[0]
}

// printBooks prints one line per book.
func printBooks(books []catalog.BookSummary, favorite func(id string) bool) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	for _, b := range books {
		mark := " "
		if favorite != nil && favorite(b.ID) {
			mark = "*"
		}
		fmt.Printf("%s %-12s  %-50s  %-28s %s\n", mark, b.ID, truncate(b.Title, 50), truncate(b.AuthorName, 28), b.Year)
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
