package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aampere/ev-valuation/internal/config"
	"github.com/aampere/ev-valuation/internal/core"
	"github.com/aampere/ev-valuation/internal/dataset"
	"github.com/aampere/ev-valuation/internal/logging"
	"github.com/aampere/ev-valuation/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset_dir", cfg.Dataset.Dir,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// buildTable loads the dataset from disk and aggregates it into a fresh
	// reference table. Used at startup and for every reload.
	buildTable := func() (*core.ReferenceTable, error) {
		rows, path, err := dataset.Load(cfg.Dataset)
		if err != nil {
			return nil, err
		}
		table, err := core.BuildReferenceTable(rows)
		if err != nil {
			return nil, err
		}
		table.Source = path
		return table, nil
	}

	// An empty dataset at startup is fatal: refuse to serve rather than
	// answer with made-up prices.
	table, err := buildTable()
	if err != nil {
		slog.Error("failed to build reference table", "error", err)
		os.Exit(1)
	}
	store := core.NewTableStore(table)

	slog.Info("reference table built",
		"records", table.Size(),
		"build_id", table.BuildID,
		"source", table.Source,
	)

	server := web.NewServer(store, core.Engine{}, buildTable, cfg)

	// SIGHUP rebuilds the table from disk; the swap is a single pointer
	// assignment, so in-flight requests keep their table.
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	go func() {
		for range hupCh {
			slog.Info("SIGHUP received, reloading dataset")
			replacement, err := buildTable()
			if err != nil {
				slog.Error("dataset reload failed, keeping current table", "error", err)
				continue
			}
			old := store.Swap(replacement)
			slog.Info("reference table reloaded",
				"records", replacement.Size(),
				"build_id", replacement.BuildID,
				"previous_build_id", old.BuildID,
			)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
