package models

// CycleRow is one normalized charge/discharge cycle.
// Missing float cells hold NaN.
type CycleRow struct {
	CycleNumber         int64   `json:"cycle_number"`
	ChargeCapacity      float64 `json:"charge_capacity"`
	DischargeCapacity   float64 `json:"discharge_capacity"`
	Current             float64 `json:"current"`
	CoulombicEfficiency float64 `json:"coulombic_efficiency"`
}

// CycleTable is the typed, re-indexed cycle table produced by normalization.
// Rows are addressed by zero-based position.
type CycleTable struct {
	Rows []CycleRow `json:"rows"`
}

// Len returns the number of cycles.
func (t *CycleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the value of the named column as a float.
// ok is false for unknown columns.
func (r CycleRow) Column(name string) (v float64, ok bool) {
	switch name {
	case ColumnChargeCapacity:
		return r.ChargeCapacity, true
	case ColumnDischargeCapacity:
		return r.DischargeCapacity, true
	case ColumnCurrent:
		return r.Current, true
	case ColumnCoulombicEfficiency:
		return r.CoulombicEfficiency, true
	case ColumnCycleNumber:
		return float64(r.CycleNumber), true
	}
	return 0, false
}
