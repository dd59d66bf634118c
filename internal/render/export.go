package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/hessq/internal/graph"
)

// NodeJSON is the exported form of a node.
type NodeJSON struct {
	Timestamp  time.Time `json:"timestamp"`
	ID         string    `json:"id"`
	Amount     string    `json:"amount"`
	Color      string    `json:"color"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Degree     int       `json:"degree"`
	Suspicious bool      `json:"suspicious"`
}

// EdgeJSON is the exported form of an edge.
type EdgeJSON struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// GraphJSON is the exported form of a whole graph.
type GraphJSON struct {
	Nodes           []NodeJSON `json:"nodes"`
	Edges           []EdgeJSON `json:"edges"`
	Flagged         []string   `json:"flagged"`
	Threshold       float64    `json:"threshold"`
	DegreeThreshold int        `json:"degree_threshold"`
}

// ToJSON converts a graph to its exported form.
func ToJSON(g *graph.Graph) GraphJSON {
	out := GraphJSON{
		Nodes:           make([]NodeJSON, 0, len(g.Nodes)),
		Edges:           make([]EdgeJSON, 0, len(g.Edges)),
		Flagged:         g.Suspicious(),
		Threshold:       g.Config.Threshold,
		DegreeThreshold: g.Config.DegreeThreshold,
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, NodeJSON{
			ID:         n.ID(),
			Amount:     n.Transaction.Amount.String(),
			Latitude:   n.Transaction.Latitude,
			Longitude:  n.Transaction.Longitude,
			Timestamp:  n.Transaction.Timestamp,
			Degree:     n.Degree,
			Suspicious: n.Suspicious,
			Color:      n.Color(),
		})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, EdgeJSON(e))
	}
	return out
}

// WriteJSON writes the indented JSON form of g.
func WriteJSON(w io.Writer, g *graph.Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToJSON(g)); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}
