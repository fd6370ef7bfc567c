// Package ledger persists executed distributions to an append-only CSV
// file. The ledger is the engine's durability boundary: rows are only ever
// appended, never rewritten, and corrections happen by appending new rows.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Row is one executed allocation, recorded with enough context to audit
// or manually retry the distribution later.
type Row struct {
	Timestamp       string
	KnotID          string
	KnuID           string
	Owner           string
	Effort          float64
	ImpactPrimary   float64
	ImpactSpillover float64
	Weight          float64
	TokensTT        float64
	TokensDeg       int64
	TxID            string
	ValidatedBy     string
}

// header matches the historical knu_ledger.csv column order.
var header = []string{
	"timestamp", "knot_id", "knu_id", "owner",
	"E_pred", "dR_primary", "dR_adj_sum", "weight",
	"tokens_tt", "tokens_deg", "tx_id", "validated_by",
}

// Sink appends executed distribution rows to a durable store.
type Sink interface {
	Append(row Row) error
}

// CSVSink appends rows to a CSV file, creating the file and its header
// lazily on first write. Existing content is never truncated.
type CSVSink struct {
	path string
}

// NewCSV returns a sink backed by the CSV file at path.
func NewCSV(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the backing file location.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one row, prefixed by the header if the file is new or
// empty. Writes are flushed before returning so a crash after Append
// leaves the row durable.
func (s *CSVSink) Append(row Row) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	if err := w.Write(row.fields()); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	return f.Sync()
}

func (r Row) fields() []string {
	return []string{
		r.Timestamp,
		r.KnotID,
		r.KnuID,
		r.Owner,
		formatFloat(r.Effort),
		formatFloat(r.ImpactPrimary),
		formatFloat(r.ImpactSpillover),
		formatFloat(r.Weight),
		formatFloat(r.TokensTT),
		strconv.FormatInt(r.TokensDeg, 10),
		r.TxID,
		r.ValidatedBy,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
