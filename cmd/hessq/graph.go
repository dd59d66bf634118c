package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/hessq/internal/cli"
	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultOutputName is the image written when --output is not given.
const defaultOutputName = "transaction_graph"

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build and render the transaction graph",
		Long: `Load transactions from a CSV file (or use the built-in dataset), connect every pair
whose combined distance is below the threshold, and render the result.

The distance of two transactions is the euclidean distance of their coordinates plus
0.5 per hour and 0.01 per dollar between them. Transactions with more than two
connections are flagged in red.`,
		Example: `  hessq graph
  hessq graph --file transactions.csv --output graph.svg
  hessq graph --file transactions.csv --format json --output -`,
		RunE: runGraph,
	}

	// Flags
	cmd.Flags().StringP("file", "f", "", "CSV file with Transaction ID, Amount ($), Latitude, Longitude and Timestamp columns")
	cmd.Flags().StringP("output", "o", "", "Output file, or - for stdout (default: transaction_graph.<format>)")
	cmd.Flags().String("format", "", "Output format: png, svg or json (default: from --output, else png)")
	cmd.Flags().Float64("threshold", graph.DefaultThreshold, "Connect transactions closer than this distance")
	cmd.Flags().Float64("time-factor", graph.DefaultTimeFactor, "Distance added per hour between transactions")
	cmd.Flags().Float64("amount-factor", graph.DefaultAmountFactor, "Distance added per dollar between transactions")
	cmd.Flags().Int("degree-threshold", graph.DefaultDegreeThreshold, "Flag transactions with more connections than this")
	cmd.Flags().Int("width", render.DefaultOptions().Width, "Image width in pixels")
	cmd.Flags().Int("height", render.DefaultOptions().Height, "Image height in pixels")
	cmd.Flags().Bool("caption", true, "Draw the explanatory caption on PNG output")

	// Bind to viper
	_ = viper.BindPFlag("graph.threshold", cmd.Flags().Lookup("threshold"))
	_ = viper.BindPFlag("graph.time_factor", cmd.Flags().Lookup("time-factor"))
	_ = viper.BindPFlag("graph.amount_factor", cmd.Flags().Lookup("amount-factor"))
	_ = viper.BindPFlag("graph.degree_threshold", cmd.Flags().Lookup("degree-threshold"))
	_ = viper.BindPFlag("render.width", cmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("render.height", cmd.Flags().Lookup("height"))
	_ = viper.BindPFlag("render.caption", cmd.Flags().Lookup("caption"))

	return cmd
}

func runGraph(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	format, err := resolveFormat(formatName, output)
	if err != nil {
		return err
	}
	if output == "" {
		output = defaultOutputName + "." + string(format)
	}

	source, txns, err := loadTransactions(ctx, file)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Comparing %d transactions...", len(txns))))

	g, err := buildGraph(ctx, settings.Graph, txns)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
		return render.NewRenderer(settings.Render).Render(w, g, format)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	recordRun(ctx, settings, source, g)

	slog.Info(cli.FormatGraphSummary(source, g))
	if output != "-" {
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Graph written to %s", output)))
	}
	return nil
}

// resolveFormat picks the explicit format, else the one implied by the output extension,
// else PNG.
func resolveFormat(name, output string) (render.Format, error) {
	if name == "" && output != "" && output != "-" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	return render.ParseFormat(name)
}

// writeOutput runs write against stdout when path is "-", otherwise against a new file.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
