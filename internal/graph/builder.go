package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hessq/internal/model"
)

// Construction errors.
var (
	ErrDuplicateNode = errors.New("duplicate transaction ID")
	ErrEmptyNodeID   = errors.New("transaction ID cannot be empty")
)

// ProgressFunc is called after each row of the pairwise comparison.
type ProgressFunc func(done, total int)

// Builder turns transactions into a proximity graph.
type Builder struct {
	progress ProgressFunc
	config   Config
}

// NewBuilder creates a builder with the given configuration.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{config: cfg}, nil
}

// WithProgress registers a callback that observes pairwise comparison progress.
func (b *Builder) WithProgress(fn ProgressFunc) *Builder {
	b.progress = fn
	return b
}

// Build compares every unordered pair of transactions once and connects the pairs whose
// weight is strictly below the threshold.
func (b *Builder) Build(ctx context.Context, transactions []model.Transaction) (*Graph, error) {
	g := newGraph(b.config, len(transactions))
	for _, txn := range transactions {
		if txn.ID == "" {
			return nil, ErrEmptyNodeID
		}
		if _, exists := g.index[txn.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, txn.ID)
		}
		g.addNode(txn)
	}

	total := len(transactions)
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for j := i + 1; j < total; j++ {
			w := b.config.Weight(transactions[i], transactions[j])
			if w < b.config.Threshold {
				g.addEdge(transactions[i].ID, transactions[j].ID, w)
			}
		}

		if b.progress != nil {
			b.progress(i+1, total)
		}
	}

	g.markSuspicious()

	slog.Debug("Built transaction graph",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"threshold", b.config.Threshold)

	return g, nil
}

// Build is a convenience wrapper using the default configuration.
func Build(ctx context.Context, transactions []model.Transaction) (*Graph, error) {
	b, err := NewBuilder(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, transactions)
}
