package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestGetTableColumns(t *testing.T) {
	db := newSQLite(t)

	err := db.Exec("CREATE TABLE org_units (id INTEGER PRIMARY KEY, OrgUnitName TEXT, district TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "org_units")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "integer", columns[0].Type)
	assert.Equal(t, "OrgUnitName", columns[1].Field, "case is kept")
	assert.Equal(t, "text", columns[2].Type)

	// PRAGMA table_info returns an empty result for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, ValidateTableName("dhis2_org_units"))
	assert.ErrorIs(t, ValidateTableName("units; DROP TABLE x"), ErrInvalidTableName)
	assert.ErrorIs(t, ValidateTableName(""), ErrInvalidTableName)

	_, err := GetTableColumns(nil, "bad name")
	assert.ErrorIs(t, err, ErrInvalidTableName)
}
