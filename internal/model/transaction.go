package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single geolocated payment from an uploaded file or the demo dataset.
type Transaction struct {
	Timestamp time.Time
	ID        string
	Amount    decimal.Decimal // Dollar amount as written in the source
	Latitude  float64
	Longitude float64
}

// GenerateHash creates a stable fingerprint of the transaction contents.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%.6f:%.6f:%s",
		t.ID,
		t.Amount.StringFixed(2),
		t.Latitude,
		t.Longitude,
		t.Timestamp.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// DatasetHash fingerprints an ordered set of transactions so repeated analyses of the same
// input can be recognised in the run history.
func DatasetHash(transactions []Transaction) string {
	h := sha256.New()
	for i := range transactions {
		_, _ = h.Write([]byte(transactions[i].GenerateHash()))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
