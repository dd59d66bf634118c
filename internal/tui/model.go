package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/hessq/internal/graph"
	"github.com/Veraticus/hessq/internal/tui/themes"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultTableHeight = 12
	detailWidth        = 36
	flagMark           = "●"
)

// Model is the explorer state. It lists graph nodes and shows the neighbours of the
// highlighted row.
type Model struct {
	graph       *graph.Graph
	theme       themes.Theme
	keys        KeyMap
	title       string
	table       table.Model
	width       int
	height      int
	flaggedOnly bool
}

// NewModel builds an explorer for g.
func NewModel(g *graph.Graph, title string) Model {
	theme := themes.Default

	styles := table.DefaultStyles()
	styles.Header = theme.Header
	styles.Selected = theme.Selected

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 12},
			{Title: "Amount", Width: 12},
			{Title: "Latitude", Width: 10},
			{Title: "Longitude", Width: 10},
			{Title: "Degree", Width: 7},
			{Title: "Flag", Width: 5},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
		table.WithStyles(styles),
	)

	m := Model{
		graph: g,
		theme: theme,
		keys:  DefaultKeyMap(),
		title: title,
		table: t,
	}
	m.refreshRows()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// title, summary, help and table header take roughly six lines
		if h := msg.Height - 6; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.ToggleFlagged):
			m.flaggedOnly = !m.flaggedOnly
			m.refreshRows()
			m.table.SetCursor(0)
			return m, nil
		case key.Matches(msg, m.keys.Home):
			m.table.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.End):
			m.table.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.summaryLine())
	b.WriteString("\n\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.BorderedBox.Render(m.table.View()),
		m.theme.BorderedBox.Width(detailWidth).Render(m.detailView()),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.helpView())

	return b.String()
}

// SelectedID returns the ID of the highlighted node, or "" when the table is empty.
func (m Model) SelectedID() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// FlaggedOnly reports whether only suspicious nodes are listed.
func (m Model) FlaggedOnly() bool {
	return m.flaggedOnly
}

// Rows returns the number of listed nodes.
func (m Model) Rows() int {
	return len(m.table.Rows())
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.graph.Nodes))
	for _, n := range m.graph.Nodes {
		if m.flaggedOnly && !n.Suspicious {
			continue
		}
		flag := ""
		if n.Suspicious {
			flag = flagMark
		}
		rows = append(rows, table.Row{
			n.ID(),
			"$" + n.Transaction.Amount.StringFixed(2),
			strconv.FormatFloat(n.Transaction.Latitude, 'f', 2, 64),
			strconv.FormatFloat(n.Transaction.Longitude, 'f', 2, 64),
			strconv.Itoa(n.Degree),
			flag,
		})
	}
	m.table.SetRows(rows)
}

func (m Model) summaryLine() string {
	s := m.graph.Summary()
	line := fmt.Sprintf("%d transactions · %d edges · %d flagged",
		s.Nodes, s.Edges, len(s.Flagged))
	if m.flaggedOnly {
		line += " · showing flagged only"
	}
	return m.theme.Subtitle.Render(line)
}

func (m Model) detailView() string {
	id := m.SelectedID()
	if id == "" {
		return m.theme.Subtitle.Render("No transactions to show")
	}

	n, ok := m.graph.Node(id)
	if !ok {
		return ""
	}

	var b strings.Builder
	heading := m.theme.Bold.Render(id)
	if n.Suspicious {
		heading = m.theme.Flagged.Render(id + " (suspicious)")
	}
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(n.Transaction.Timestamp.Format("2006-01-02 15:04")))
	b.WriteString("\n\n")

	neighbors := m.graph.Neighbors(id)
	if len(neighbors) == 0 {
		b.WriteString(m.theme.Normal.Render("No close transactions"))
		return b.String()
	}

	b.WriteString(m.theme.Normal.Render(fmt.Sprintf("%d close transactions:", len(neighbors))))
	for _, nb := range neighbors {
		b.WriteString(fmt.Sprintf("\n  %-12s %6.2f", nb.ID, nb.Weight))
	}
	return b.String()
}

func (m Model) helpView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.Help.Render(strings.Join(parts, " • "))
}
