package kpi

import (
	"path/filepath"
	"strings"
)

// ParseCellID derives the cell id and anode code from a file name.
// The cell id is the base name without its final extension; the anode
// code is the cell id up to the first underscore, or the whole id.
func ParseCellID(filename string) (cellID, anodo string) {
	base := filepath.Base(filename)
	cellID = strings.TrimSuffix(base, filepath.Ext(base))
	anodo, _, _ = strings.Cut(cellID, "_")
	return cellID, anodo
}
