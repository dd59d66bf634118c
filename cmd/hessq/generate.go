package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/hessq/internal/cli"
	"github.com/Veraticus/hessq/internal/demo"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a sample transaction CSV",
		Long: `Write the built-in ten-transaction dataset, or a reproducible synthetic dataset of
any size, as a CSV that the graph, serve and explore commands accept.`,
		Example: `  hessq generate --output sample.csv
  hessq generate --rows 2000 --seed 7 --output large.csv`,
		RunE: runGenerate,
	}

	cmd.Flags().StringP("output", "o", "-", "Output file, or - for stdout")
	cmd.Flags().IntP("rows", "n", 0, "Number of synthetic transactions (0 writes the built-in dataset)")
	cmd.Flags().Int64("seed", 1, "Random seed for synthetic transactions")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	rows, _ := cmd.Flags().GetInt("rows")
	seed, _ := cmd.Flags().GetInt64("seed")

	var txns []model.Transaction
	if rows == 0 {
		txns = demo.DefaultTransactions()
	} else {
		var err error
		txns, err = demo.Generate(rows, seed)
		if err != nil {
			return err
		}
	}

	if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return demo.WriteCSV(w, txns)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	if output != "-" {
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Wrote %d transactions to %s", len(txns), output)))
	}
	return nil
}
