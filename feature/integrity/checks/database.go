package checks

import (
	"context"
	"fmt"

	"facility-matcher/core/database"

	"gorm.io/gorm"
)

// DatabaseReport is the result of a registry database check.
type DatabaseReport struct {
	Driver    string                 `json:"driver"`
	Reachable bool                   `json:"reachable"`
	Tables    map[string]TableReport `json:"tables,omitempty"`
	Errors    []string               `json:"errors"`
}

// TableReport describes one registry table usable as a source.
type TableReport struct {
	Columns []string `json:"columns"`
	Status  string   `json:"status"` // "ok", "missing", "error"
}

// CheckDatabase pings the database and inspects the given tables.
func CheckDatabase(ctx context.Context, db *gorm.DB, tables []string) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Driver: db.Dialector.Name(),
		Errors: []string{},
	}

	if err := database.Ping(ctx, db); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, nil
	}
	report.Reachable = true

	if len(tables) == 0 {
		return report, nil
	}

	report.Tables = make(map[string]TableReport, len(tables))
	for _, name := range tables {
		cols, err := database.GetTableColumns(db.WithContext(ctx), name)
		switch {
		case err != nil:
			report.Tables[name] = TableReport{Status: "error"}
			report.Errors = append(report.Errors, err.Error())
		case len(cols) == 0:
			report.Tables[name] = TableReport{Status: "missing"}
		default:
			names := make([]string, len(cols))
			for i, c := range cols {
				names[i] = c.Field
			}
			report.Tables[name] = TableReport{Columns: names, Status: "ok"}
		}
	}

	return report, nil
}
