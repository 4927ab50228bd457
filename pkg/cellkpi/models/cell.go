// Package models defines data structures for cycling data and KPI summaries.
package models

// Required column names of a raw cycle table.
const (
	ColumnCycleNumber         = "Cycle Number"
	ColumnChargeCapacity      = "Charge Capacity"
	ColumnDischargeCapacity   = "Discharge Capacity"
	ColumnCurrent             = "Current"
	ColumnCoulombicEfficiency = "Coulombic Efficiency"
)

// RequiredColumns lists the columns every raw cycle table must carry.
var RequiredColumns = []string{
	ColumnCycleNumber,
	ColumnChargeCapacity,
	ColumnDischargeCapacity,
	ColumnCurrent,
	ColumnCoulombicEfficiency,
}

// RawTable is a sheet read as text, before normalization.
type RawTable struct {
	// Sheet is the worksheet the table was read from.
	Sheet string `json:"sheet,omitempty"`
	// Columns holds the header names in sheet order.
	Columns []string `json:"columns"`
	// Rows holds cell text per row, each padded to len(Columns).
	// Rows[0] is the first row below the header (usually the units row).
	Rows [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the text at row, column name. Unknown columns and short rows yield "".
func (t *RawTable) Cell(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}
