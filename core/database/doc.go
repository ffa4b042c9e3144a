// Package database connects to the facility registry database and reads registry tables.
//
// The database is optional. When configured, the matcher can load the reference list
// (or the primary list) straight from a table instead of an uploaded file.
//
// # Connect
//
// Connect opens MySQL or SQLite through GORM depending on Config.Driver, and verifies
// the connection with a ping bounded by Config.TimeoutSeconds.
//
// # Tables
//
// GetTableColumns inspects a table's columns in declaration order (SHOW COLUMNS on MySQL,
// PRAGMA table_info on SQLite). LoadTable reads the whole table into a table.Table.
// TableCache keeps loaded tables for a TTL and collapses concurrent loads of the same table.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database unavailable", zap.Error(err))
//	}
//
//	ref, err := database.LoadTable(ctx, db, "dhis2_org_units")
package database
