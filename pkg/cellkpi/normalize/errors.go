package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable indicates a raw table without any row to discard.
var ErrEmptyTable = errors.New("table has no rows")

// MissingColumnError reports required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Columns, ", "))
}

// TypeCoercionError reports a cell that cannot be parsed to its column type.
// Row is the position in the re-indexed table.
type TypeCoercionError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot convert %q: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *TypeCoercionError) Unwrap() error {
	return e.Err
}
