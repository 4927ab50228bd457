package export

import (
	"encoding/json"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// ToJSON serializes the table. Missing values become null and non-finite
// values the strings "NaN", "Infinity" and "-Infinity".
func ToJSON(t models.CombinedTable, pretty bool) ([]byte, error) {
	if t.Rows == nil {
		t.Rows = []models.Summary{}
	}
	if pretty {
		return json.MarshalIndent(t, "", "  ")
	}
	return json.Marshal(t)
}
