package demo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/Veraticus/hessq/internal/ingest"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidCount is returned when asked to generate a non-positive number of rows.
var ErrInvalidCount = errors.New("row count must be positive")

// Bounds of the synthetic region, matching the spread of the default dataset.
const (
	minLatitude  = -100.0
	maxLatitude  = -60.0
	minLongitude = 30.0
	maxLongitude = 60.0
	minAmount    = 100
	maxAmount    = 1000
)

// Generate produces n reproducible synthetic transactions. The same seed always yields the
// same dataset.
func Generate(n int, seed int64) ([]model.Transaction, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // demo data, not security sensitive
	txns := make([]model.Transaction, n)
	ts := DefaultStart
	for i := 0; i < n; i++ {
		lat := minLatitude + rng.Float64()*(maxLatitude-minLatitude)
		lon := minLongitude + rng.Float64()*(maxLongitude-minLongitude)
		txns[i] = model.Transaction{
			ID:        fmt.Sprintf("T%d", i+1),
			Amount:    decimal.NewFromInt(int64(minAmount + rng.Intn(maxAmount-minAmount))),
			Latitude:  roundTo(lat, 2),
			Longitude: roundTo(lon, 2),
			Timestamp: ts,
		}
		// Irregular spacing between 10 minutes and 2 hours
		ts = ts.Add(time.Duration(10+rng.Intn(110)) * time.Minute)
	}
	return txns, nil
}

// WriteCSV writes transactions with the canonical header so the output can be fed back into
// the loader.
func WriteCSV(w io.Writer, transactions []model.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ingest.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, txn := range transactions {
		row := []string{
			txn.ID,
			txn.Amount.String(),
			strconv.FormatFloat(txn.Latitude, 'f', -1, 64),
			strconv.FormatFloat(txn.Longitude, 'f', -1, 64),
			txn.Timestamp.UTC().Format(ingest.TimestampLayout),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", txn.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func roundTo(v float64, places int) float64 {
	d, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64() //nolint:gosec // places is small
	return d
}
