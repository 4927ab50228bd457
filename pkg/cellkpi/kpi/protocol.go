package kpi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// Aggregator names how a window reduces its rows to one value.
type Aggregator string

const (
	// AggregatorValue takes the column value at a single index.
	AggregatorValue Aggregator = "value"
	// AggregatorMean averages the column over Start..End inclusive, skipping missing cells.
	AggregatorMean Aggregator = "mean"
	// AggregatorCoulombicEfficiency computes Charge/Discharge*100 at a single index.
	AggregatorCoulombicEfficiency Aggregator = "coulombic_efficiency"
)

// Window is one KPI of a cycling protocol.
type Window struct {
	// Name is the output column name.
	Name string `yaml:"name" json:"name" validate:"required"`
	// Column is the cycle table column read by value and mean windows.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	// Aggregator selects the reduction.
	Aggregator Aggregator `yaml:"aggregator" json:"aggregator" validate:"required,oneof=value mean coulombic_efficiency"`
	// Start is the first zero-based row index.
	Start int `yaml:"start" json:"start" validate:"gte=0"`
	// End is the last row index, inclusive.
	End int `yaml:"end" json:"end" validate:"gtefield=Start"`
}

// Protocol is the ordered set of KPI windows of a cycling program.
type Protocol struct {
	Name    string   `yaml:"name" json:"name"`
	Windows []Window `yaml:"windows" json:"windows" validate:"required,min=1,dive"`
}

var validate = validator.New()

// DefaultProtocol returns the formation + rate-capability + 1C retention program:
// three formation cycles, five cycles each at C/5, C/2, 1C and 1C charge/2C
// discharge, then 1C recovery up to cycle 103.
func DefaultProtocol() Protocol {
	return Protocol{
		Name: "gigagreen-rate-capability",
		Windows: []Window{
			{Name: "1st lithiation capacity (mAh/g)", Aggregator: AggregatorValue, Start: 0, End: 0},
			{Name: "1st coulombic efficiency (%)", Aggregator: AggregatorCoulombicEfficiency, Start: 0, End: 0},
			{Name: "3rd lithiation capacity (mAh/g)", Aggregator: AggregatorValue, Start: 2, End: 2},
			{Name: "average capacity@C/5 (mAh/g)", Aggregator: AggregatorMean, Start: 3, End: 7},
			{Name: "average capacity@C/2 (mAh/g)", Aggregator: AggregatorMean, Start: 8, End: 12},
			{Name: "average capacity@1C (mAh/g)", Aggregator: AggregatorMean, Start: 13, End: 17},
			{Name: "average capacity@1Cch-2Cdch (mAh/g)", Aggregator: AggregatorMean, Start: 18, End: 22},
			{Name: "average capacity@1CR (mAh/g)", Aggregator: AggregatorMean, Start: 23, End: 101},
			{Name: "103rd capacity", Aggregator: AggregatorValue, Start: 102, End: 102},
		},
	}
}

// column returns the window column, defaulting to discharge capacity.
func (w Window) column() string {
	if w.Column == "" {
		return models.ColumnDischargeCapacity
	}
	return w.Column
}

// Validate checks window bounds, aggregators and name uniqueness.
func (p Protocol) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid protocol: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid protocol: %w", err)
	}

	seen := make(map[string]bool, len(p.Windows))
	for i, w := range p.Windows {
		if w.Name == models.FieldCellID || w.Name == models.FieldAnodo {
			return fmt.Errorf("invalid protocol: window %d uses reserved name %q", i, w.Name)
		}
		if seen[w.Name] {
			return fmt.Errorf("invalid protocol: duplicate window name %q", w.Name)
		}
		seen[w.Name] = true

		if w.Aggregator != AggregatorMean && w.Start != w.End {
			return fmt.Errorf("invalid protocol: window %q: %s needs a single index", w.Name, w.Aggregator)
		}
		if w.Aggregator != AggregatorCoulombicEfficiency {
			if _, ok := (models.CycleRow{}).Column(w.column()); !ok {
				return fmt.Errorf("invalid protocol: window %q: unknown column %q", w.Name, w.Column)
			}
		}
	}
	return nil
}

// MinRows returns the number of rows a table needs for every window index to exist.
func (p Protocol) MinRows() int {
	n := 0
	for _, w := range p.Windows {
		if w.End+1 > n {
			n = w.End + 1
		}
	}
	return n
}

// MetricNames returns the window names in order.
func (p Protocol) MetricNames() []string {
	names := make([]string, len(p.Windows))
	for i, w := range p.Windows {
		names[i] = w.Name
	}
	return names
}

// Columns returns the summary header for this protocol.
func (p Protocol) Columns() []string {
	return append([]string{models.FieldCellID, models.FieldAnodo}, p.MetricNames()...)
}
