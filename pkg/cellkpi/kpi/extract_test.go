package kpi

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// cycleTable builds n cycles with discharge capacity discharge(i) and a
// charge capacity 10 above it.
func cycleTable(n int, discharge func(i int) float64) *models.CycleTable {
	rows := make([]models.CycleRow, n)
	for i := range rows {
		d := discharge(i)
		rows[i] = models.CycleRow{
			CycleNumber:       int64(i + 1),
			ChargeCapacity:    d + 10,
			DischargeCapacity: d,
			Current:           0.5,
		}
	}
	return &models.CycleTable{Rows: rows}
}

func byIndex(i int) float64 { return float64(i) }

func metric(t *testing.T, s models.Summary, name string) models.Value {
	t.Helper()
	v, ok := s.Metric(name)
	require.True(t, ok, "metric %q", name)
	return v
}

func TestExtractDefaultProtocol(t *testing.T) {
	table := cycleTable(103, func(i int) float64 { return 100 + float64(i) })

	got, err := Extract(table, "NMC532_Cell01.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "NMC532_Cell01", got.CellID)
	assert.Equal(t, "NMC532", got.Anodo)

	want := []models.Metric{
		{Name: "1st lithiation capacity (mAh/g)", Value: models.Float(100)},
		{Name: "1st coulombic efficiency (%)", Value: models.Float(110)},
		{Name: "3rd lithiation capacity (mAh/g)", Value: models.Float(102)},
		{Name: "average capacity@C/5 (mAh/g)", Value: models.Float(105)},
		{Name: "average capacity@C/2 (mAh/g)", Value: models.Float(110)},
		{Name: "average capacity@1C (mAh/g)", Value: models.Float(115)},
		{Name: "average capacity@1Cch-2Cdch (mAh/g)", Value: models.Float(120)},
		{Name: "average capacity@1CR (mAh/g)", Value: models.Float(162)},
		{Name: "103rd capacity", Value: models.Float(202)},
	}
	if diff := cmp.Diff(want, got.Metrics, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractCoulombicEfficiency(t *testing.T) {
	table := cycleTable(103, byIndex)
	table.Rows[0].ChargeCapacity = 150
	table.Rows[0].DischargeCapacity = 200

	got, err := Extract(table, "a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.Float(75), metric(t, got, "1st coulombic efficiency (%)"))
}

func TestExtractZeroDischargePropagatesNonFinite(t *testing.T) {
	table := cycleTable(103, byIndex)
	table.Rows[0].ChargeCapacity = 150
	table.Rows[0].DischargeCapacity = 0

	got, err := Extract(table, "a.xlsx")
	require.NoError(t, err)
	ce := metric(t, got, "1st coulombic efficiency (%)")
	assert.True(t, ce.Valid)
	assert.True(t, math.IsInf(ce.Float, 1))

	table.Rows[0].ChargeCapacity = 0
	got, err = Extract(table, "a.xlsx")
	require.NoError(t, err)
	ce = metric(t, got, "1st coulombic efficiency (%)")
	assert.True(t, ce.Valid)
	assert.True(t, math.IsNaN(ce.Float))
}

func TestExtractMean(t *testing.T) {
	table := cycleTable(103, byIndex)
	for i, v := range []float64{10, 20, 30, 40, 50} {
		table.Rows[3+i].DischargeCapacity = v
	}

	got, err := Extract(table, "a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.Float(30), metric(t, got, "average capacity@C/5 (mAh/g)"))
}

func TestExtractMeanSkipsMissing(t *testing.T) {
	table := cycleTable(103, byIndex)
	table.Rows[8].DischargeCapacity = math.NaN()
	table.Rows[9].DischargeCapacity = math.NaN()

	got, err := Extract(table, "a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.Float(11), metric(t, got, "average capacity@C/2 (mAh/g)"))
}

func TestExtractAllMissingRangeIsMarker(t *testing.T) {
	table := cycleTable(103, byIndex)
	for i := 13; i <= 17; i++ {
		table.Rows[i].DischargeCapacity = math.NaN()
	}
	table.Rows[2].DischargeCapacity = math.NaN()

	got, err := Extract(table, "a.xlsx")
	require.NoError(t, err)
	assert.True(t, metric(t, got, "average capacity@1C (mAh/g)").IsMissing())
	assert.True(t, metric(t, got, "3rd lithiation capacity (mAh/g)").IsMissing())
}

func TestExtractInsufficientRows(t *testing.T) {
	tests := []struct {
		rows  int
		index int
	}{
		{0, 0},
		{2, 2},
		{50, 50},
		{102, 102},
	}

	for _, tt := range tests {
		_, err := Extract(cycleTable(tt.rows, byIndex), "a.xlsx")

		var short *InsufficientRowsError
		require.ErrorAs(t, err, &short, "rows=%d", tt.rows)
		assert.Equal(t, tt.index, short.Index)
		assert.Equal(t, tt.rows, short.Rows)
		assert.Equal(t, 103, short.Required)
	}
}

func TestExtractEmptyFilename(t *testing.T) {
	_, err := Extract(cycleTable(103, byIndex), "")
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

func TestExtractIsDeterministic(t *testing.T) {
	table := cycleTable(120, func(i int) float64 { return 300 - float64(i)*0.75 })

	first, err := Extract(table, "Si_C-07.xlsx")
	require.NoError(t, err)
	second, err := Extract(table, "Si_C-07.xlsx")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestExtractCustomProtocol(t *testing.T) {
	e, err := NewExtractor(Protocol{
		Name: "short",
		Windows: []Window{
			{Name: "first charge", Column: models.ColumnChargeCapacity, Aggregator: AggregatorValue},
			{Name: "mean current", Column: models.ColumnCurrent, Aggregator: AggregatorMean, Start: 0, End: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, e.MinRows())

	got, err := e.Extract(cycleTable(5, byIndex), "x.xlsx")
	require.NoError(t, err)
	assert.Equal(t, models.Float(10), metric(t, got, "first charge"))
	assert.Equal(t, models.Float(0.5), metric(t, got, "mean current"))
	assert.Equal(t, []string{models.FieldCellID, models.FieldAnodo, "first charge", "mean current"}, e.Columns())
}

func TestParseCellID(t *testing.T) {
	tests := []struct {
		filename string
		cellID   string
		anodo    string
	}{
		{"NMC532_Cell01.xlsx", "NMC532_Cell01", "NMC532"},
		{"CellX.xlsx", "CellX", "CellX"},
		{"A_B_C.xlsx", "A_B_C", "A"},
		{"uploads/Si_07.xlsx", "Si_07", "Si"},
		{"_lead.xlsx", "_lead", ""},
		{"noext", "noext", "noext"},
	}

	for _, tt := range tests {
		cellID, anodo := ParseCellID(tt.filename)
		assert.Equal(t, tt.cellID, cellID, tt.filename)
		assert.Equal(t, tt.anodo, anodo, tt.filename)
	}
}
