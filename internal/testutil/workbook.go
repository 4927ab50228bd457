package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// CycleWorkbook describes a test workbook with a header row, an optional
// units row and data rows.
type CycleWorkbook struct {
	Sheet   string
	Columns []string
	Units   []interface{}
	Rows    [][]interface{}
}

// DefaultUnits is the units row written below the header.
var DefaultUnits = []interface{}{"", "mAh/g", "mAh/g", "mA", "%"}

// NewCycleWorkbook returns a workbook of n cycles over the required
// columns. Cycle i has discharge capacity discharge(i) and a charge
// capacity 10 above it.
func NewCycleWorkbook(n int, discharge func(i int) float64) *CycleWorkbook {
	rows := make([][]interface{}, n)
	for i := range rows {
		d := discharge(i)
		rows[i] = []interface{}{i + 1, d + 10, d, 0.5, (d + 10) / d * 100}
	}
	return &CycleWorkbook{
		Sheet:   "Sheet1",
		Columns: append([]string(nil), models.RequiredColumns...),
		Units:   DefaultUnits,
		Rows:    rows,
	}
}

// Bytes renders the workbook as xlsx content.
func (w *CycleWorkbook) Bytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := w.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	header := make([]interface{}, len(w.Columns))
	for i, c := range w.Columns {
		header[i] = c
	}
	row := 1
	write := func(values []interface{}) {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		v := values
		if err := f.SetSheetRow(sheet, cell, &v); err != nil {
			t.Fatalf("write row %d: %v", row, err)
		}
		row++
	}
	write(header)
	if w.Units != nil {
		write(w.Units)
	}
	for _, r := range w.Rows {
		write(r)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Save writes the workbook to dir/name and returns the path.
func (w *CycleWorkbook) Save(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, w.Bytes(t), 0644); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
