package database

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"facility-matcher/core/table"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestLoadTable_SQLite(t *testing.T) {
	db := newSQLite(t)
	require.NoError(t, db.Exec("CREATE TABLE org_units (code INTEGER, name TEXT, district TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO org_units VALUES (1, 'Alpha Clinic', 'North'), (2, 'Beta Hospital', NULL)").Error)

	tbl, err := LoadTable(context.Background(), db, "org_units")
	require.NoError(t, err)

	assert.Equal(t, "org_units", tbl.Name)
	assert.Equal(t, []string{"code", "name", "district"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, int64(1), tbl.Rows[0]["code"])
	assert.Equal(t, "Alpha Clinic", tbl.Rows[0]["name"])
	assert.Nil(t, tbl.Rows[1]["district"])
}

func TestLoadTable_Missing(t *testing.T) {
	db := newSQLite(t)

	_, err := LoadTable(context.Background(), db, "nothing_here")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = LoadTable(context.Background(), nil, "x")
	assert.Error(t, err)
}

func TestLoadTable_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SHOW COLUMNS FROM `facilities`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("HF_Name", "VARCHAR(255)", "YES", "", nil, "").
			AddRow("beds", "INT", "YES", "", nil, ""))
	mock.ExpectQuery("SELECT \\* FROM `facilities`").
		WillReturnRows(sqlmock.NewRows([]string{"HF_Name", "beds"}).
			AddRow([]byte("Alpha Clinic"), int64(12)))

	tbl, err := LoadTable(context.Background(), db, "facilities")
	require.NoError(t, err)
	assert.Equal(t, []string{"HF_Name", "beds"}, tbl.Columns)
	assert.Equal(t, "Alpha Clinic", tbl.Rows[0]["HF_Name"])
	assert.Equal(t, int64(12), tbl.Rows[0]["beds"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T08:00:00Z", normalizeValue(ts))
	assert.Equal(t, int64(4), normalizeValue(int32(4)))
	assert.Equal(t, int64(9), normalizeValue(uint64(9)))
	assert.Equal(t, "18446744073709551615", normalizeValue(uint64(math.MaxUint64)))
	assert.Equal(t, "9223372036854775808", normalizeValue(uint64(math.MaxInt64)+1))
	assert.Equal(t, "x", normalizeValue([]byte("x")))
	assert.Nil(t, normalizeValue(nil))
}

func TestTableCache(t *testing.T) {
	var loads atomic.Int32
	cache := NewTableCache(nil, time.Minute)
	cache.load = func(ctx context.Context, db *gorm.DB, name string) (table.Table, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return table.New(name, []string{"name"}, nil), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := cache.Get(context.Background(), "org_units")
			assert.NoError(t, err)
			assert.Equal(t, "org_units", tbl.Name)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), loads.Load())

	cache.Invalidate("org_units")
	_, err := cache.Get(context.Background(), "org_units")
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())

	_, err = cache.Get(context.Background(), "bad name")
	assert.ErrorIs(t, err, ErrInvalidTableName)
}

func TestTableCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	cache := NewTableCache(nil, time.Minute)
	cache.load = func(ctx context.Context, db *gorm.DB, name string) (table.Table, error) {
		calls++
		return table.Table{}, errors.New("boom")
	}

	_, err := cache.Get(context.Background(), "t")
	assert.Error(t, err)
	_, err = cache.Get(context.Background(), "t")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}
