package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Identifier columns that lead every summary row.
const (
	FieldCellID = "cell_id"
	FieldAnodo  = "Anodo"
)

// Value is a KPI value. A Value that is not Valid is the missing marker,
// distinct from any computed number including NaN and zero.
type Value struct {
	Float float64
	Valid bool
}

// Float wraps a computed number.
func Float(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Missing returns the missing-value marker.
func Missing() Value {
	return Value{}
}

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool {
	return !v.Valid
}

// IsFinite reports whether v holds a finite number.
func (v Value) IsFinite() bool {
	return v.Valid && !math.IsNaN(v.Float) && !math.IsInf(v.Float, 0)
}

func (v Value) String() string {
	if !v.Valid {
		return "<missing>"
	}
	return fmt.Sprint(v.Float)
}

// MarshalJSON encodes missing as null and non-finite numbers as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.Valid:
		return []byte("null"), nil
	case math.IsNaN(v.Float):
		return []byte(`"NaN"`), nil
	case math.IsInf(v.Float, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v.Float, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON reverses MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*v = Float(math.NaN())
		case "Infinity":
			*v = Float(math.Inf(1))
		case "-Infinity":
			*v = Float(math.Inf(-1))
		default:
			return fmt.Errorf("invalid value %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Float(f)
	return nil
}

// Metric is one named KPI of a summary.
type Metric struct {
	// Name is the output column name, e.g. "1st coulombic efficiency (%)".
	Name string `json:"name"`
	// Value is the computed value or the missing marker.
	Value Value `json:"value"`
}

// Summary is the one-row KPI record of a processed cell file.
type Summary struct {
	// CellID is the file name without its extension.
	CellID string `json:"cell_id"`
	// Anodo is the part of CellID before the first underscore.
	Anodo string `json:"Anodo"`
	// Metrics holds the KPI values in protocol order.
	Metrics []Metric `json:"metrics"`
}

// Columns returns the field names of s in output order.
func (s Summary) Columns() []string {
	cols := make([]string, 0, len(s.Metrics)+2)
	cols = append(cols, FieldCellID, FieldAnodo)
	for _, m := range s.Metrics {
		cols = append(cols, m.Name)
	}
	return cols
}

// Metric returns the value of the named metric.
func (s Summary) Metric(name string) (Value, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Missing(), false
}

// Clone returns a deep copy of s.
func (s Summary) Clone() Summary {
	out := s
	out.Metrics = append([]Metric(nil), s.Metrics...)
	return out
}
