package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/hessq/internal/cli"
	"github.com/Veraticus/hessq/internal/config"
	"github.com/Veraticus/hessq/internal/demo"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/ingest"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/Veraticus/hessq/internal/service"
	"github.com/Veraticus/hessq/internal/storage"
	"github.com/spf13/viper"
)

// loadSettings resolves the validated settings from the global viper instance.
func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// loadTransactions reads path, or returns the built-in dataset when path is empty.
func loadTransactions(ctx context.Context, path string) (string, []model.Transaction, error) {
	if path == "" {
		slog.Debug("No input file given, using the default dataset")
		return model.SourceDefault, demo.DefaultTransactions(), nil
	}

	path = config.ExpandPath(path)
	f, err := os.Open(path) //nolint:gosec // user-provided input file
	if err != nil {
		return "", nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txns, err := ingest.NewParser().ParseFile(ctx, f)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	slog.Debug("Loaded transactions", "path", path, "count", len(txns))
	return path, txns, nil
}

// buildGraph builds the graph for txns, showing a progress bar for large inputs.
func buildGraph(ctx context.Context, cfg graph.Config, txns []model.Transaction) (*graph.Graph, error) {
	builder, err := graph.NewBuilder(cfg)
	if err != nil {
		return nil, err
	}
	if progress := cli.NewGraphProgress(os.Stderr, len(txns)); progress != nil {
		builder = builder.WithProgress(progress)
	}
	return builder.Build(ctx, txns)
}

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context, settings *config.Settings) (service.Storage, error) {
	dbPath := settings.History.DatabasePath
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// recordRun stores g in the run history when history is enabled. Failures are reported
// but do not fail the command.
func recordRun(ctx context.Context, settings *config.Settings, source string, g *graph.Graph) {
	if !settings.History.Enabled {
		return
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		slog.Warn(cli.FormatWarning("Run history unavailable"), "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	run := g.Record(source)
	if err := store.SaveRun(ctx, run); err != nil {
		slog.Warn(cli.FormatWarning("Failed to record run"), "error", err)
		return
	}
	slog.Debug("Recorded run", "id", run.ID)
}
