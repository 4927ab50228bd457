package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

func sampleTable() models.CombinedTable {
	return models.CombinedTable{
		Columns: []string{models.FieldCellID, models.FieldAnodo, "capacity", "1st coulombic efficiency (%)"},
		Rows: []models.Summary{
			{
				CellID: "NMC532_Cell01", Anodo: "NMC532",
				Metrics: []models.Metric{
					{Name: "capacity", Value: models.Float(201.5)},
					{Name: "1st coulombic efficiency (%)", Value: models.Float(75)},
				},
			},
			{
				CellID: "Si_02", Anodo: "Si",
				Metrics: []models.Metric{
					{Name: "capacity", Value: models.Missing()},
					{Name: "1st coulombic efficiency (%)", Value: models.Float(math.Inf(1))},
				},
			},
			{
				CellID: "Si_03", Anodo: "Si",
				Metrics: []models.Metric{
					{Name: "capacity", Value: models.Float(0)},
					{Name: "1st coulombic efficiency (%)", Value: models.Float(math.NaN())},
				},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	got, err := CSV(sampleTable())
	require.NoError(t, err)

	want := "cell_id,Anodo,capacity,1st coulombic efficiency (%)\n" +
		"NMC532_Cell01,NMC532,201.5,75\n" +
		"Si_02,Si,,inf\n" +
		"Si_03,Si,0,NaN\n"
	assert.Equal(t, want, string(got))
}

func TestWriteCSVEmptyTable(t *testing.T) {
	got, err := CSV(models.CombinedTable{Columns: []string{models.FieldCellID, models.FieldAnodo}})
	require.NoError(t, err)
	assert.Equal(t, "cell_id,Anodo\n", string(got))
}

func TestWriteCSVWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(), CSVOptions{BOMPrefix: true}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, models.FieldCellID, back.Columns[0])
}

func TestCSVRoundTrip(t *testing.T) {
	table := sampleTable()
	data, err := CSV(table)
	require.NoError(t, err)

	back, err := ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	if diff := cmp.Diff(table, back, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVDoesNotMutateTable(t *testing.T) {
	table := sampleTable()
	_, err := CSV(table)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleTable(), table, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("table modified (-want +got):\n%s", diff)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "id,anode,x\n"},
		{"bad number", "cell_id,Anodo,x\nA,A,abc\n"},
		{"ragged row", "cell_id,Anodo,x\nA,A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidCSV)
		})
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleTable(), false)
	require.NoError(t, err)

	var decoded struct {
		Rows []struct {
			CellID  string `json:"cell_id"`
			Metrics []struct {
				Value json.RawMessage `json:"value"`
			} `json:"metrics"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Rows, 3)
	assert.Equal(t, "201.5", string(decoded.Rows[0].Metrics[0].Value))
	assert.Equal(t, "null", string(decoded.Rows[1].Metrics[0].Value))
	assert.Equal(t, `"Infinity"`, string(decoded.Rows[1].Metrics[1].Value))
	assert.Equal(t, `"NaN"`, string(decoded.Rows[2].Metrics[1].Value))

	var back models.CombinedTable
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(sampleTable(), back, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("json round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToJSONEmptyRows(t *testing.T) {
	data, err := ToJSON(models.CombinedTable{Columns: []string{"cell_id", "Anodo"}}, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows": []`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, sampleTable().Columns, rows[0])
	assert.Equal(t, []string{"NMC532_Cell01", "NMC532", "201.5", "75"}, rows[1])
	assert.Equal(t, "inf", rows[2][3])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "NaN", rows[3][3])
}
