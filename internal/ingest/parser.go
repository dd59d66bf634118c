// Package ingest loads transaction CSV files into the model.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hessq/internal/model"
	"github.com/shopspring/decimal"
)

// Column names of the transaction CSV format.
const (
	ColumnID        = "Transaction ID"
	ColumnAmount    = "Amount ($)"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnTimestamp = "Timestamp"
)

// TimestampLayout is the layout used when writing timestamps. Fractional seconds are written
// only when present.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// Parse errors.
var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptyID           = errors.New("empty transaction ID")
	ErrDuplicateID       = errors.New("duplicate transaction ID")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrNoTransactions    = errors.New("no transactions found")
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Header returns the canonical CSV header.
func Header() []string {
	return []string{ColumnID, ColumnAmount, ColumnLatitude, ColumnLongitude, ColumnTimestamp}
}

// Parser reads transaction CSV files.
type Parser struct{}

// NewParser creates a new CSV parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads every row of a transaction CSV. Any malformed row aborts the parse with an
// error that names the offending line.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoTransactions
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	seen := make(map[string]int)

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		record, readErr := r.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read CSV record: %w", readErr)
		}
		line, _ := r.FieldPos(0)

		if isBlank(record) {
			continue
		}

		txn, rowErr := p.parseRecord(record, cols)
		if rowErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, rowErr)
		}

		if prev, dup := seen[txn.ID]; dup {
			return nil, fmt.Errorf("line %d: %w: %s (first seen on line %d)", line, ErrDuplicateID, txn.ID, prev)
		}
		seen[txn.ID] = line

		transactions = append(transactions, txn)
	}

	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}

	slog.Debug("Parsed transaction CSV", "transactions", len(transactions))

	return transactions, nil
}

type columnIndex struct {
	id, amount, latitude, longitude, timestamp int
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeColumn(name)
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		i, ok := positions[normalizeColumn(name)]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var cols columnIndex
	var err error
	if cols.id, err = lookup(ColumnID); err != nil {
		return cols, err
	}
	if cols.amount, err = lookup(ColumnAmount); err != nil {
		return cols, err
	}
	if cols.latitude, err = lookup(ColumnLatitude); err != nil {
		return cols, err
	}
	if cols.longitude, err = lookup(ColumnLongitude); err != nil {
		return cols, err
	}
	if cols.timestamp, err = lookup(ColumnTimestamp); err != nil {
		return cols, err
	}
	return cols, nil
}

func (p *Parser) parseRecord(record []string, cols columnIndex) (model.Transaction, error) {
	var txn model.Transaction

	txn.ID = field(record, cols.id)
	if txn.ID == "" {
		return txn, ErrEmptyID
	}

	amount, err := ParseAmount(field(record, cols.amount))
	if err != nil {
		return txn, err
	}
	txn.Amount = amount

	if txn.Latitude, err = parseCoordinate(field(record, cols.latitude), ColumnLatitude); err != nil {
		return txn, err
	}
	if txn.Longitude, err = parseCoordinate(field(record, cols.longitude), ColumnLongitude); err != nil {
		return txn, err
	}

	if txn.Timestamp, err = ParseTimestamp(field(record, cols.timestamp)); err != nil {
		return txn, err
	}

	return txn, nil
}

// ParseAmount parses a dollar amount, tolerating a leading "$" and thousands separators.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return d, nil
}

// ParseTimestamp accepts the common date-time layouts produced by spreadsheets and pandas.
// Values without a zone are interpreted as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

func parseCoordinate(raw, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidCoordinate, column, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -180 || v > 180 {
		return 0, fmt.Errorf("%w: %s %g out of range", ErrInvalidCoordinate, column, v)
	}
	return v, nil
}

func normalizeColumn(name string) string {
	// Strip a UTF-8 BOM that spreadsheet exports like to prepend
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
