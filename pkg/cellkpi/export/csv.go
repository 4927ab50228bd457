package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// ErrInvalidCSV indicates the text is not a combined summary table.
var ErrInvalidCSV = errors.New("invalid summary csv")

// utf8BOM lets spreadsheet programs detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	// BOMPrefix writes a UTF-8 byte order mark before the header.
	BOMPrefix bool
}

// WriteCSV writes the table with a header row.
func WriteCSV(w io.Writer, t models.CombinedTable, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	metrics := t.MetricNames()
	for i, row := range t.Rows {
		record := make([]string, 0, len(t.Columns))
		record = append(record, row.CellID, row.Anodo)
		for _, name := range metrics {
			v, _ := row.Metric(name)
			record = append(record, formatValue(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSV returns the table as UTF-8 comma-separated text without a BOM.
func CSV(t models.CombinedTable) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, CSVOptions{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV parses text written by WriteCSV.
func ReadCSV(r io.Reader) (models.CombinedTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	header, err := reader.Read()
	if err == io.EOF {
		return models.CombinedTable{}, fmt.Errorf("%w: no header", ErrInvalidCSV)
	}
	if err != nil {
		return models.CombinedTable{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(header) < 2 || header[0] != models.FieldCellID || header[1] != models.FieldAnodo {
		return models.CombinedTable{}, fmt.Errorf("%w: header must start with %s,%s", ErrInvalidCSV, models.FieldCellID, models.FieldAnodo)
	}

	table := models.CombinedTable{Columns: header, Rows: []models.Summary{}}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.CombinedTable{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		row := models.Summary{
			CellID:  record[0],
			Anodo:   record[1],
			Metrics: make([]models.Metric, 0, len(header)-2),
		}
		for i, name := range header[2:] {
			v, err := parseValue(record[i+2])
			if err != nil {
				return models.CombinedTable{}, fmt.Errorf("%w: line %d column %q: %v", ErrInvalidCSV, line, name, err)
			}
			row.Metrics = append(row.Metrics, models.Metric{Name: name, Value: v})
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
