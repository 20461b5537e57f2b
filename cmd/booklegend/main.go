// Command booklegend is the BookLegend terminal book browser.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/catalog"
	"github.com/abelbrown/booklegend/internal/config"
	"github.com/abelbrown/booklegend/internal/coord"
	"github.com/abelbrown/booklegend/internal/logging"
	"github.com/abelbrown/booklegend/internal/metrics"
	"github.com/abelbrown/booklegend/internal/prefs"
	"github.com/abelbrown/booklegend/internal/ui"
)

func main() {
	dataDir := flag.String("data-dir", "", "data directory (default ~/.booklegend)")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	if err := logging.Init(cfg.DataDir, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Close()

	st, err := prefs.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	client := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.APIBaseURL,
		CoverHost:         cfg.CoverHost,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	agg := aggregator.New(client, st, aggregator.Options{
		SearchDebounce:       cfg.SearchDebounce,
		FavoritesConcurrency: cfg.FavoritesConcurrency,
	})
	defer agg.Close()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		logging.Info("Serving metrics", "addr", cfg.MetricsAddr)
	}

	app := ui.NewApp(coord.Commands(ctx, agg))
	program := tea.NewProgram(app, tea.WithAltScreen())

	coordinator := coord.NewCoordinator(agg)
	coordinator.Start(ctx, program)

	logging.Info("Starting UI", "data_dir", cfg.DataDir)
	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}

	cancel()
	coordinator.Wait()

	if metricsSrv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	logging.Info("UI stopped")
}
