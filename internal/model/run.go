package model

import "time"

// SourceDefault names runs built from the built-in dataset.
const SourceDefault = "default"

// Run records the outcome of one graph analysis for the history log.
type Run struct {
	CreatedAt        time.Time
	ID               string
	Source           string // File name, "default" or "upload:<name>"
	DatasetHash      string
	Flagged          []string
	Threshold        float64
	TransactionCount int
	EdgeCount        int
}
