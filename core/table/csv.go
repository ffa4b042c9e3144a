package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"facility-matcher/core/utils"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses delimited text. Input that is not valid UTF-8 is decoded as Windows-1252.
func ReadCSV(name string, r io.Reader, comma rune, opts ReadOptions) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", name, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return Table{}, fmt.Errorf("decode %s: %w", name, err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", name, err)
	}

	return fromGrid(name, grid, opts)
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, columns []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(columns))
	for _, row := range rows {
		for i := range line {
			line[i] = ""
			if i < len(row) {
				line[i] = formatCell(row[i])
			}
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	default:
		return utils.ToString(val)
	}
}
