// Package summary accumulates per-file KPI summaries over a session.
package summary

import (
	"errors"
	"fmt"
	"slices"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// ErrColumnMismatch indicates a record whose fields differ from the store header.
var ErrColumnMismatch = errors.New("record columns do not match store columns")

// Store is an append-only, ordered collection of summaries.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	columns []string
	records []models.Summary
}

// NewStore returns an empty store whose combined table uses columns as header.
func NewStore(columns []string) *Store {
	return &Store{columns: slices.Clone(columns)}
}

// Append adds rec after every record appended before it. Records with the
// same cell id are kept side by side; nothing is merged or deduplicated.
func (s *Store) Append(rec models.Summary) error {
	if got := rec.Columns(); !slices.Equal(got, s.columns) {
		return fmt.Errorf("%w: cell %q", ErrColumnMismatch, rec.CellID)
	}
	s.records = append(s.records, rec.Clone())
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}

// Columns returns the store header.
func (s *Store) Columns() []string {
	return slices.Clone(s.columns)
}

// Combined returns a copy of all records in arrival order.
// An empty store yields a table with a header and no rows.
func (s *Store) Combined() models.CombinedTable {
	rows := make([]models.Summary, len(s.records))
	for i, r := range s.records {
		rows[i] = r.Clone()
	}
	return models.CombinedTable{Columns: s.Columns(), Rows: rows}
}
