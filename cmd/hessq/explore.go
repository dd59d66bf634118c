package main

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/hessq/internal/model"
	"github.com/Veraticus/hessq/internal/tui"
	"github.com/spf13/cobra"
)

func exploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the transaction graph interactively",
		Long: `Open a terminal table of every transaction with its degree and flag, and the
close transactions of the highlighted row.

Keys: ↑/↓ move, f toggles flagged-only, q quits.`,
		RunE: runExplore,
	}

	cmd.Flags().StringP("file", "f", "", "CSV file to explore (default: built-in dataset)")

	return cmd
}

func runExplore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	source, txns, err := loadTransactions(ctx, file)
	if err != nil {
		return err
	}

	g, err := buildGraph(ctx, settings.Graph, txns)
	if err != nil {
		return err
	}

	recordRun(ctx, settings, source, g)

	title := "Default dataset"
	if source != model.SourceDefault {
		title = filepath.Base(source)
	}
	return tui.Run(ctx, g, fmt.Sprintf("🔍 %s", title))
}
