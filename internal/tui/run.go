package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/hessq/internal/graph"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the explorer for g and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, g *graph.Graph, title string) error {
	if g == nil || len(g.Nodes) == 0 {
		return fmt.Errorf("nothing to explore: graph has no nodes")
	}

	p := tea.NewProgram(
		NewModel(g, title),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}
