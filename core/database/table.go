package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"facility-matcher/core/table"

	"gorm.io/gorm"
)

// ErrTableNotFound is returned when a table has no columns (does not exist).
var ErrTableNotFound = errors.New("table not found")

// LoadTable reads every row of tableName into a table.Table, keeping the table's column order.
func LoadTable(ctx context.Context, db *gorm.DB, tableName string) (table.Table, error) {
	if db == nil {
		return table.Table{}, fmt.Errorf("database not configured")
	}

	cols, err := GetTableColumns(db.WithContext(ctx), tableName)
	if err != nil {
		return table.Table{}, err
	}
	if len(cols) == 0 {
		return table.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Field
	}

	var raw []map[string]any
	if err := db.WithContext(ctx).Table(tableName).Find(&raw).Error; err != nil {
		return table.Table{}, fmt.Errorf("failed to load table %s: %w", tableName, err)
	}

	rows := make([]table.Record, len(raw))
	for i, r := range raw {
		rec := make(table.Record, len(names))
		for _, n := range names {
			rec[n] = normalizeValue(r[n])
		}
		rows[i] = rec
	}

	return table.New(tableName, names, rows), nil
}

// normalizeValue maps driver values onto the cell types used by table.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case uint:
		return normalizeUint(uint64(val))
	case uint32:
		return int64(val)
	case uint64:
		return normalizeUint(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

// normalizeUint keeps values beyond the int64 range as their decimal text.
func normalizeUint(v uint64) any {
	if v > math.MaxInt64 {
		return strconv.FormatUint(v, 10)
	}
	return int64(v)
}
