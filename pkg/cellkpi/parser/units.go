// Package parser reads cycling workbooks into raw tables.
package parser

import (
	"strings"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// ColumnUnits returns the unit label of each column when the first row
// below the header is a units row, e.g. "mAh/g" under "Charge Capacity".
// It returns nil when that row holds a numeric cycle number.
func ColumnUnits(t *models.RawTable) map[string]string {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	cycle := strings.TrimSpace(t.Cell(0, models.ColumnCycleNumber))
	if _, isText := parseValue(cycle).(string); !isText {
		return nil
	}

	units := make(map[string]string)
	for i, col := range t.Columns {
		if i >= len(t.Rows[0]) {
			break
		}
		if u := strings.TrimSpace(t.Rows[0][i]); u != "" {
			units[col] = u
		}
	}
	return units
}
