package table

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ReadOptions controls how raw cells are turned into a Table.
type ReadOptions struct {
	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	Sheet string
	// RawStrings keeps every non-empty cell as a string instead of inferring numbers.
	RawStrings bool
}

// Read parses r according to the extension of name (.csv, .tsv, .xlsx).
func Read(name string, r io.Reader, opts ReadOptions) (Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(name, r, ',', opts)
	case ".tsv":
		return ReadCSV(name, r, '\t', opts)
	case ".xlsx":
		return ReadXLSX(name, r, opts)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(name))
	}
}

// fromGrid converts a header row plus data rows of raw text into a typed Table.
func fromGrid(name string, grid [][]string, opts ReadOptions) (Table, error) {
	if len(grid) == 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}

	header := normalizeHeader(grid[0])
	rows := make([]Record, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		if isBlankRow(raw) {
			continue
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(raw) {
				rec[col] = parseCell(raw[i], opts.RawStrings)
			} else {
				rec[col] = nil
			}
		}
		rows = append(rows, rec)
	}

	return New(name, header, rows), nil
}

// normalizeHeader trims and NFC-normalises header cells, naming blanks and
// suffixing repeats so that every column name is unique.
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, cell := range raw {
		name := norm.NFC.String(strings.TrimSpace(cell))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		}
		seen[name] = 0
		header[i] = name
	}
	return header
}

func isBlankRow(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// nullTokens are the cell texts spreadsheet and dataframe exports use for missing values.
var nullTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "<NA>": {},
	"N/A": {}, "n/a": {}, "NA": {},
	"NULL": {}, "null": {}, "None": {},
	"NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
}

// parseCell maps raw text to nil, int64, float64 or string.
// Surrounding whitespace only matters for strings, which keep it.
func parseCell(raw string, rawStrings bool) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if _, null := nullTokens[s]; null {
		return nil
	}
	if rawStrings {
		return raw
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return raw
}
