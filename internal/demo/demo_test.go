package demo

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/hessq/internal/ingest"
	"github.com/Veraticus/hessq/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTransactions(t *testing.T) {
	txns := DefaultTransactions()
	require.Len(t, txns, 10)

	for i, txn := range txns {
		assert.Equal(t, "T"+strconv.Itoa(i+1), txn.ID)
		assert.Equal(t, DefaultStart.Add(time.Duration(i)*time.Hour), txn.Timestamp)
	}

	assert.Equal(t, "112", txns[0].Amount.String())
	assert.InDelta(t, -84.66, txns[0].Latitude, 1e-9)
	assert.InDelta(t, 32.9, txns[0].Longitude, 1e-9)
	assert.Equal(t, "222", txns[9].Amount.String())
	assert.InDelta(t, -80.5, txns[9].Latitude, 1e-9)
	assert.InDelta(t, 40.0, txns[9].Longitude, 1e-9)

	// Callers may modify the returned slice without affecting later calls.
	txns[0].ID = "changed"
	assert.Equal(t, "T1", DefaultTransactions()[0].ID)
}

func TestGenerate(t *testing.T) {
	first, err := Generate(50, 42)
	require.NoError(t, err)
	require.Len(t, first, 50)

	second, err := Generate(50, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := Generate(50, 43)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	seen := make(map[string]bool)
	for i, txn := range first {
		assert.False(t, seen[txn.ID], "duplicate id %s", txn.ID)
		seen[txn.ID] = true

		assert.GreaterOrEqual(t, txn.Latitude, minLatitude)
		assert.LessOrEqual(t, txn.Latitude, maxLatitude)
		assert.GreaterOrEqual(t, txn.Longitude, minLongitude)
		assert.LessOrEqual(t, txn.Longitude, maxLongitude)
		assert.True(t, txn.Amount.IsPositive())
		if i > 0 {
			assert.True(t, txn.Timestamp.After(first[i-1].Timestamp))
		}
	}
}

func TestGenerate_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		_, err := Generate(n, 1)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		gen  func(t *testing.T) []model.Transaction
	}{
		{
			name: "default dataset",
			gen: func(_ *testing.T) []model.Transaction {
				return DefaultTransactions()
			},
		},
		{
			name: "synthetic dataset",
			gen: func(t *testing.T) []model.Transaction {
				txns, err := Generate(25, 7)
				require.NoError(t, err)
				return txns
			},
		},
		{
			name: "full precision values",
			gen: func(_ *testing.T) []model.Transaction {
				return []model.Transaction{
					{
						ID:        "P1",
						Amount:    decimal.RequireFromString("1234.5678"),
						Latitude:  -84.6649,
						Longitude: 32.905123456789,
						Timestamp: time.Date(2025, 7, 1, 8, 0, 0, 500_000_000, time.UTC),
					},
					{
						ID:        "P2",
						Amount:    decimal.RequireFromString("0.01"),
						Latitude:  1e-7,
						Longitude: -179.999999,
						Timestamp: time.Date(2025, 7, 1, 8, 0, 0, 123_456_789, time.UTC),
					},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.gen(t)

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, want))
			assert.True(t, strings.HasPrefix(buf.String(), strings.Join(ingest.Header(), ",")+"\n"))

			got, err := ingest.NewParser().ParseFile(context.Background(), &buf)
			require.NoError(t, err)
			require.Len(t, got, len(want))

			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
				assert.True(t, want[i].Amount.Equal(got[i].Amount), want[i].ID)
				assert.InDelta(t, want[i].Latitude, got[i].Latitude, 1e-9)
				assert.InDelta(t, want[i].Longitude, got[i].Longitude, 1e-9)
				assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), want[i].ID)
			}
		})
	}
}
