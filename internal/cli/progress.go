package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/hessq/internal/graph"
	"github.com/schollz/progressbar/v3"
)

// progressMinRows is the input size below which no progress bar is shown.
const progressMinRows = 500

// NewGraphProgress returns a progress callback for graph construction that drives a
// terminal progress bar, or nil when total is too small to be worth showing.
func NewGraphProgress(w io.Writer, total int) graph.ProgressFunc {
	if total < progressMinRows {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Comparing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	return func(done, _ int) {
		if err := bar.Set(done); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}
