// Package normalize turns raw cycle tables into typed cycle tables.
package normalize

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

var (
	errNotInteger = errors.New("not an integer")
	errEmptyCell  = errors.New("empty cell")
)

// Normalize discards the first row of raw, re-indexes the remaining rows
// from zero and converts the required columns to their types.
// The input is not modified.
func Normalize(raw *models.RawTable) (*models.CycleTable, error) {
	if raw == nil || len(raw.Rows) == 0 {
		return nil, ErrEmptyTable
	}

	idx := make(map[string]int, len(models.RequiredColumns))
	var missing []string
	for _, col := range models.RequiredColumns {
		i := raw.ColumnIndex(col)
		if i < 0 {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	data := raw.Rows[1:]
	table := &models.CycleTable{Rows: make([]models.CycleRow, len(data))}
	for pos, cells := range data {
		cell := func(col string) string {
			if i := idx[col]; i < len(cells) {
				return strings.TrimSpace(cells[i])
			}
			return ""
		}

		cycle, err := parseInt(cell(models.ColumnCycleNumber))
		if err != nil {
			return nil, &TypeCoercionError{Column: models.ColumnCycleNumber, Row: pos, Value: cell(models.ColumnCycleNumber), Err: err}
		}
		row := models.CycleRow{CycleNumber: cycle}

		floats := []struct {
			col string
			dst *float64
		}{
			{models.ColumnChargeCapacity, &row.ChargeCapacity},
			{models.ColumnDischargeCapacity, &row.DischargeCapacity},
			{models.ColumnCurrent, &row.Current},
			{models.ColumnCoulombicEfficiency, &row.CoulombicEfficiency},
		}
		for _, fc := range floats {
			v, err := parseFloat(cell(fc.col))
			if err != nil {
				return nil, &TypeCoercionError{Column: fc.col, Row: pos, Value: cell(fc.col), Err: err}
			}
			*fc.dst = v
		}
		table.Rows[pos] = row
	}

	return table, nil
}

// parseInt accepts integer text and integral decimals such as "3.0".
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, errEmptyCell
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, errNotInteger
	}
	return int64(f), nil
}

// parseFloat maps empty cells to NaN, the missing marker of a cycle table.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
