// Package demo provides the built-in demonstration dataset and a synthetic data generator.
package demo

import (
	"fmt"
	"time"

	"github.com/Veraticus/hessq/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultStart is the timestamp of the first default transaction; the rest follow hourly.
var DefaultStart = time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC)

var (
	defaultAmounts    = []int64{112, 445, 870, 280, 116, 334, 550, 123, 780, 222}
	defaultLatitudes  = []float64{-84.66, -90.73, -91.67, -60.39, -65.58, -98.22, -85.00, -95.10, -92.00, -80.50}
	defaultLongitudes = []float64{32.9, 57.1, 59.7, 34.8, 41.0, 36.5, 45.0, 50.0, 47.0, 40.0}
)

// DefaultTransactions returns the ten demo transactions T1..T10 used when no file is supplied.
func DefaultTransactions() []model.Transaction {
	txns := make([]model.Transaction, len(defaultAmounts))
	for i := range defaultAmounts {
		txns[i] = model.Transaction{
			ID:        fmt.Sprintf("T%d", i+1),
			Amount:    decimal.NewFromInt(defaultAmounts[i]),
			Latitude:  defaultLatitudes[i],
			Longitude: defaultLongitudes[i],
			Timestamp: DefaultStart.Add(time.Duration(i) * time.Hour),
		}
	}
	return txns
}
