package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/hessq/internal/cli"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Long: `Show the most recent graph analyses stored in the run history.

Runs are only recorded when history.enabled is set in the configuration
(or HESSQ_HISTORY_ENABLED=true).`,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to show")
	cmd.Flags().String("show", "", "Show a single run by ID")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	show, _ := cmd.Flags().GetString("show")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if !settings.History.Enabled {
		slog.Info(cli.FormatInfo("Run history is disabled. Set history.enabled to start recording runs."))
		return nil
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer func() { _ = store.Close() }()

	if show != "" {
		run, err := store.GetRun(ctx, show)
		if err != nil {
			return err
		}
		slog.Info(cli.FormatRuns([]model.Run{*run}))
		return nil
	}

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	slog.Info(cli.FormatRuns(runs))
	return nil
}
