package checks

import (
	"context"
	"testing"

	"facility-matcher/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDatabase(t *testing.T) {
	ctx := context.Background()

	_, err := CheckDatabase(ctx, nil, nil)
	assert.Error(t, err)

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE org_units (id INTEGER, name TEXT)").Error)

	report, err := CheckDatabase(ctx, db, []string{"org_units", "ghost", "bad name"})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", report.Driver)
	assert.True(t, report.Reachable)
	assert.Equal(t, TableReport{Columns: []string{"id", "name"}, Status: "ok"}, report.Tables["org_units"])
	assert.Equal(t, "missing", report.Tables["ghost"].Status)
	assert.Equal(t, "error", report.Tables["bad name"].Status)
	assert.Len(t, report.Errors, 1)
}
