// Package table holds the tabular model shared by ingestion, matching and export.
//
// A Table is an ordered list of column names plus an ordered list of records.
// Each Record maps a column name to a typed cell value: nil, string, int64,
// float64 or bool. Readers produce typed cells the way a spreadsheet parser
// would (numbers become numbers, empty cells become nil), so downstream code
// never has to re-parse text.
//
// # Formats
//
//   - CSV / TSV: encoding/csv with UTF-8 BOM stripping and a Windows-1252
//     fallback for files saved by legacy spreadsheet tools.
//   - XLSX: read and written through excelize.
//
// # Usage
//
//	t, err := table.Read("mfl.xlsx", f, table.ReadOptions{})
//	renamed, err := t.Rename(map[string]string{"HF": "facility"})
//	err = table.WriteXLSX(w, "Results", cols, rows)
package table
