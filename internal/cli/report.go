package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// maxDegreeRows caps the node table in the summary box.
const maxDegreeRows = 10

// FormatGraphSummary renders the counts, flagged transactions and busiest nodes of g.
func FormatGraphSummary(source string, g *graph.Graph) string {
	s := g.Summary()

	content := fmt.Sprintf(`Source: %s
Transactions: %d
Connections: %d (weight < %g)
Max degree: %d
`, source, s.Nodes, s.Edges, g.Config.Threshold, s.MaxDegree)

	if len(s.Flagged) == 0 {
		content += "\n" + SuccessStyle.Render(SuccessIcon+" No transaction has more than "+
			fmt.Sprintf("%d", g.Config.DegreeThreshold)+" close connections")
	} else {
		content += "\n" + FlaggedStyle.Render(fmt.Sprintf("%s %d suspicious: %s",
			FlagIcon, len(s.Flagged), strings.Join(s.Flagged, ", ")))
	}

	content += "\n\n" + formatDegreeTable(g)

	return RenderBox(GraphIcon+" Transaction Graph", content)
}

func formatDegreeTable(g *graph.Graph) string {
	nodes := make([]graph.Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Degree > nodes[j].Degree
	})
	if len(nodes) > maxDegreeRows {
		nodes = nodes[:maxDegreeRows]
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TableCellStyle.Width(10).Render("ID"),
		TableCellStyle.Width(12).Render("Amount"),
		TableCellStyle.Width(8).Render("Degree"),
		TableCellStyle.Render("Closest"),
	)
	rows := []string{TableHeaderStyle.Render(header)}

	for _, n := range nodes {
		closest := "-"
		if neighbors := g.Neighbors(n.ID()); len(neighbors) > 0 {
			closest = fmt.Sprintf("%s (%.2f)", neighbors[0].ID, neighbors[0].Weight)
		}

		id := n.ID()
		if n.Suspicious {
			id = FlaggedStyle.Render(id)
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(10).Render(id),
			TableCellStyle.Width(12).Render("$"+n.Transaction.Amount.StringFixed(2)),
			TableCellStyle.Width(8).Render(fmt.Sprintf("%d", n.Degree)),
			TableCellStyle.Render(closest),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// FormatRuns renders the run history as a table.
func FormatRuns(runs []model.Run) string {
	if len(runs) == 0 {
		return SubtleStyle.Render("No runs recorded yet")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TableCellStyle.Width(38).Render("ID"),
		TableCellStyle.Width(20).Render("When"),
		TableCellStyle.Width(24).Render("Source"),
		TableCellStyle.Width(8).Render("Nodes"),
		TableCellStyle.Width(8).Render("Edges"),
		TableCellStyle.Render("Flagged"),
	)
	rows := []string{TableHeaderStyle.Render(header)}

	for _, r := range runs {
		flagged := "-"
		if len(r.Flagged) > 0 {
			flagged = FlaggedStyle.Render(strings.Join(r.Flagged, ", "))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			TableCellStyle.Width(38).Render(r.ID),
			TableCellStyle.Width(20).Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
			TableCellStyle.Width(24).Render(truncate(r.Source, 22)),
			TableCellStyle.Width(8).Render(fmt.Sprintf("%d", r.TransactionCount)),
			TableCellStyle.Width(8).Render(fmt.Sprintf("%d", r.EdgeCount)),
			TableCellStyle.Render(flagged),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
