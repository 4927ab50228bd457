package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
	"github.com/xuri/excelize/v2"
)

// ErrNotTabular indicates the input is not a readable workbook or holds no table.
var ErrNotTabular = errors.New("input is not tabular")

// ErrSheetNotFound indicates the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Open reads an xlsx workbook from r.
func Open(r io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabular, err)
	}
	return f, nil
}

// ReadRawTable reads a sheet as a header plus text rows.
// An empty sheetName selects the first sheet of the workbook.
func ReadRawTable(f *excelize.File, sheetName string) (*models.RawTable, error) {
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrNotTabular)
		}
		sheetName = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}

	// Raw values keep full precision regardless of the cell number format.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrNotTabular, sheetName)
	}

	width := maxCol - minCol + 1
	table := &models.RawTable{
		Sheet:   sheetName,
		Columns: sliceRow(rows[minRow], minCol, width),
		Rows:    make([][]string, 0, maxRow-minRow),
	}
	for i := range table.Columns {
		table.Columns[i] = strings.TrimSpace(table.Columns[i])
	}
	for rowIdx := minRow + 1; rowIdx <= maxRow; rowIdx++ {
		table.Rows = append(table.Rows, sliceRow(rows[rowIdx], minCol, width))
	}

	return table, nil
}

// sliceRow copies width cells starting at col, padding short rows with "".
func sliceRow(row []string, col, width int) []string {
	out := make([]string, width)
	for i := 0; i < width; i++ {
		if col+i < len(row) {
			out[i] = row[col+i]
		}
	}
	return out
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
