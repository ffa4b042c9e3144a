package table

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyFile is returned when an input file has no header row.
	ErrEmptyFile = errors.New("empty file")
	// ErrUnsupportedFormat is returned for file extensions without a reader.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnknownColumn is returned when a rename refers to a column that does not exist.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDuplicateColumn is returned when a rename would produce two columns with the same name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Record is a single row, keyed by column name.
type Record map[string]any

// Table is an ordered sequence of records with a fixed column order.
type Table struct {
	// Name identifies the table in logs and errors (usually the file name).
	Name string `json:"name"`
	// Columns is the column order used for display and export.
	Columns []string `json:"columns"`
	// Rows holds the records in source order.
	Rows []Record `json:"rows"`
}

// New creates a table with the given columns and rows.
func New(name string, columns []string, rows []Record) Table {
	return Table{Name: name, Columns: columns, Rows: rows}
}

// FromRecords builds a table whose columns are the union of all record keys, sorted.
func FromRecords(name string, rows []Record) Table {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range rows {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return New(name, cols, rows)
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether col is one of the table's columns.
func (t Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Preview returns at most n rows from the top of the table.
func (t Table) Preview(n int) []Record {
	if n < 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// Rename returns a copy of the table with columns renamed according to mapping (old -> new).
// Entries mapping a column to itself or to an empty string are ignored.
func (t Table) Rename(mapping map[string]string) (Table, error) {
	for from := range mapping {
		if !t.HasColumn(from) {
			return Table{}, fmt.Errorf("%w: %q", ErrUnknownColumn, from)
		}
	}

	target := func(col string) string {
		if to, ok := mapping[col]; ok && to != "" {
			return to
		}
		return col
	}

	cols := make([]string, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		name := target(c)
		if _, dup := seen[name]; dup {
			return Table{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
		cols[i] = name
	}

	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		out := make(Record, len(r))
		for k, v := range r {
			out[target(k)] = v
		}
		rows[i] = out
	}

	return New(t.Name, cols, rows), nil
}
