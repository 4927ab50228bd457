package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// formatValue formats a KPI value with the shortest representation that parses back exactly.
func formatValue(v models.Value) string {
	switch {
	case v.IsMissing():
		return ""
	case math.IsNaN(v.Float):
		return "NaN"
	case math.IsInf(v.Float, 1):
		return "inf"
	case math.IsInf(v.Float, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// parseValue reverses formatValue.
func parseValue(s string) (models.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Missing(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.Value{}, err
	}
	return models.Float(f), nil
}
