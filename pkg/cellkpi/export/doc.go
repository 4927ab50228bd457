// Package export serializes combined KPI summary tables.
//
// CSV is the download format of a session: a header row followed by one row
// per summary in arrival order, comma separated with a dot decimal separator.
// Missing values are written as empty fields, non-finite values as "inf",
// "-inf" or "NaN", so ReadCSV recovers the same values.
//
// JSON and XLSX carry the same table for API clients and spreadsheet users.
package export
