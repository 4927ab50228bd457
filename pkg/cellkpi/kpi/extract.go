// Package kpi computes per-cell electrochemical KPIs from normalized cycle tables.
package kpi

import (
	"math"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// Extractor computes the summary of a protocol. It is safe for concurrent use.
type Extractor struct {
	protocol Protocol
	minRows  int
}

// NewExtractor validates p and returns an extractor for it.
func NewExtractor(p Protocol) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	windows := append([]Window(nil), p.Windows...)
	p.Windows = windows
	return &Extractor{protocol: p, minRows: p.MinRows()}, nil
}

var defaultExtractor = func() *Extractor {
	e, err := NewExtractor(DefaultProtocol())
	if err != nil {
		panic(err)
	}
	return e
}()

// Default returns the extractor of DefaultProtocol.
func Default() *Extractor {
	return defaultExtractor
}

// Extract computes the default protocol summary of table for filename.
func Extract(table *models.CycleTable, filename string) (models.Summary, error) {
	return defaultExtractor.Extract(table, filename)
}

// Protocol returns the protocol the extractor computes.
func (e *Extractor) Protocol() Protocol {
	p := e.protocol
	p.Windows = append([]Window(nil), e.protocol.Windows...)
	return p
}

// MinRows returns the number of rows Extract requires.
func (e *Extractor) MinRows() int {
	return e.minRows
}

// Columns returns the summary header produced by Extract.
func (e *Extractor) Columns() []string {
	return e.protocol.Columns()
}

// Extract computes one summary record. table must be normalized already.
func (e *Extractor) Extract(table *models.CycleTable, filename string) (models.Summary, error) {
	if filename == "" {
		return models.Summary{}, ErrEmptyFilename
	}
	if n := table.Len(); n < e.minRows {
		return models.Summary{}, &InsufficientRowsError{
			Index:    e.firstMissingIndex(n),
			Rows:     n,
			Required: e.minRows,
		}
	}

	cellID, anodo := ParseCellID(filename)
	summary := models.Summary{
		CellID:  cellID,
		Anodo:   anodo,
		Metrics: make([]models.Metric, len(e.protocol.Windows)),
	}
	for i, w := range e.protocol.Windows {
		summary.Metrics[i] = models.Metric{Name: w.Name, Value: w.apply(table.Rows)}
	}
	return summary, nil
}

// firstMissingIndex returns the lowest window index at or beyond n.
func (e *Extractor) firstMissingIndex(n int) int {
	idx := -1
	for _, w := range e.protocol.Windows {
		if w.End < n {
			continue
		}
		c := max(w.Start, n)
		if idx < 0 || c < idx {
			idx = c
		}
	}
	return idx
}

func (w Window) apply(rows []models.CycleRow) models.Value {
	switch w.Aggregator {
	case AggregatorCoulombicEfficiency:
		return coulombicEfficiency(rows[w.Start])
	case AggregatorMean:
		return mean(rows[w.Start:w.End+1], w.column())
	default:
		v, _ := rows[w.Start].Column(w.column())
		return cellValue(v)
	}
}

// coulombicEfficiency divides without guarding zero: a zero discharge
// yields ±Inf, or NaN when the charge is zero too.
func coulombicEfficiency(r models.CycleRow) models.Value {
	if math.IsNaN(r.ChargeCapacity) || math.IsNaN(r.DischargeCapacity) {
		return models.Missing()
	}
	return models.Float(r.ChargeCapacity / r.DischargeCapacity * 100)
}

func mean(rows []models.CycleRow, column string) models.Value {
	var sum float64
	var n int
	for _, r := range rows {
		v, _ := r.Column(column)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return models.Missing()
	}
	return models.Float(sum / float64(n))
}

func cellValue(v float64) models.Value {
	if math.IsNaN(v) {
		return models.Missing()
	}
	return models.Float(v)
}
