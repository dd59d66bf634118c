package graph

import (
	"sort"

	"github.com/Veraticus/hessq/internal/model"
)

// Node colors used by every renderer.
const (
	ColorSuspicious = "red"
	ColorNormal     = "skyblue"
)

// Node is a transaction placed in the graph.
type Node struct {
	Transaction model.Transaction
	Degree      int
	Suspicious  bool
}

// ID returns the transaction ID of the node.
func (n Node) ID() string {
	return n.Transaction.ID
}

// Color returns the display color of the node.
func (n Node) Color() string {
	if n.Suspicious {
		return ColorSuspicious
	}
	return ColorNormal
}

// Edge connects two transactions whose weight fell below the threshold.
type Edge struct {
	From   string
	To     string
	Weight float64
}

// Neighbor is one side of an edge as seen from a node.
type Neighbor struct {
	ID     string
	Weight float64
}

// Summary aggregates the shape of a graph.
type Summary struct {
	Flagged   []string
	Nodes     int
	Edges     int
	MaxDegree int
}

// Graph is an undirected proximity graph. Nodes keep input order; edges are ordered by
// the input position of their endpoints.
type Graph struct {
	index  map[string]int
	adj    map[string][]Neighbor
	Nodes  []Node
	Edges  []Edge
	Config Config
}

func newGraph(cfg Config, size int) *Graph {
	return &Graph{
		Config: cfg,
		Nodes:  make([]Node, 0, size),
		index:  make(map[string]int, size),
		adj:    make(map[string][]Neighbor, size),
	}
}

func (g *Graph) addNode(txn model.Transaction) {
	g.index[txn.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Transaction: txn})
}

func (g *Graph) addEdge(from, to string, weight float64) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Weight: weight})
	g.adj[from] = append(g.adj[from], Neighbor{ID: to, Weight: weight})
	g.adj[to] = append(g.adj[to], Neighbor{ID: from, Weight: weight})
	g.Nodes[g.index[from]].Degree++
	g.Nodes[g.index[to]].Degree++
}

// markSuspicious flags nodes whose degree exceeds the configured threshold.
func (g *Graph) markSuspicious() {
	for i := range g.Nodes {
		g.Nodes[i].Suspicious = g.Nodes[i].Degree > g.Config.DegreeThreshold
	}
}

// Node looks up a node by transaction ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Degree returns the number of edges touching id, or zero for unknown IDs.
func (g *Graph) Degree(id string) int {
	n, ok := g.Node(id)
	if !ok {
		return 0
	}
	return n.Degree
}

// HasEdge reports whether a and b are connected.
func (g *Graph) HasEdge(a, b string) bool {
	for _, n := range g.adj[a] {
		if n.ID == b {
			return true
		}
	}
	return false
}

// Neighbors returns the neighbours of id ordered by ascending weight, ties broken by ID.
func (g *Graph) Neighbors(id string) []Neighbor {
	neighbors := make([]Neighbor, len(g.adj[id]))
	copy(neighbors, g.adj[id])
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Weight != neighbors[j].Weight {
			return neighbors[i].Weight < neighbors[j].Weight
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	return neighbors
}

// Suspicious returns the IDs of flagged nodes in node order.
func (g *Graph) Suspicious() []string {
	flagged := make([]string, 0)
	for _, n := range g.Nodes {
		if n.Suspicious {
			flagged = append(flagged, n.ID())
		}
	}
	return flagged
}

// Summary reports node, edge and flag counts.
func (g *Graph) Summary() Summary {
	s := Summary{
		Nodes:   len(g.Nodes),
		Edges:   len(g.Edges),
		Flagged: g.Suspicious(),
	}
	for _, n := range g.Nodes {
		if n.Degree > s.MaxDegree {
			s.MaxDegree = n.Degree
		}
	}
	return s
}

// Record summarises the graph as a run history entry for source.
func (g *Graph) Record(source string) *model.Run {
	txns := make([]model.Transaction, len(g.Nodes))
	for i, n := range g.Nodes {
		txns[i] = n.Transaction
	}
	s := g.Summary()
	return &model.Run{
		Source:           source,
		DatasetHash:      model.DatasetHash(txns),
		TransactionCount: s.Nodes,
		EdgeCount:        s.Edges,
		Flagged:          s.Flagged,
		Threshold:        g.Config.Threshold,
	}
}
