package models

// CombinedTable is the ordered concatenation of summaries accumulated in a session.
type CombinedTable struct {
	// Columns is the header: cell_id, Anodo, then metric names in protocol order.
	Columns []string `json:"columns"`
	// Rows holds the summaries in arrival order.
	Rows []Summary `json:"rows"`
}

// Len returns the number of rows.
func (t CombinedTable) Len() int {
	return len(t.Rows)
}

// MetricNames returns the columns after the identifier fields.
func (t CombinedTable) MetricNames() []string {
	if len(t.Columns) <= 2 {
		return nil
	}
	return t.Columns[2:]
}
