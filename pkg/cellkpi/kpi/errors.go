package kpi

import (
	"errors"
	"fmt"
)

// ErrEmptyFilename indicates extraction was called without a file name.
var ErrEmptyFilename = errors.New("empty file name")

// InsufficientRowsError reports a table too short for the protocol.
type InsufficientRowsError struct {
	// Index is the first required row index that does not exist.
	Index int
	// Rows is the number of rows the table has.
	Rows int
	// Required is the number of rows the protocol needs.
	Required int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("row index %d out of range: table has %d rows, protocol needs %d", e.Index, e.Rows, e.Required)
}
