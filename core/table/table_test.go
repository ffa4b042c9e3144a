package table_test

import (
	"bytes"
	"strings"
	"testing"

	"facility-matcher/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_TypesCells(t *testing.T) {
	in := "\xEF\xBB\xBFname, beds ,rate,notes\nAlpha,12,0.5,\nBeta,,x1,ok\n"

	tbl, err := table.Read("mfl.csv", strings.NewReader(in), table.ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "beds", "rate", "notes"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Alpha", tbl.Rows[0]["name"])
	assert.Equal(t, int64(12), tbl.Rows[0]["beds"])
	assert.Equal(t, 0.5, tbl.Rows[0]["rate"])
	assert.Nil(t, tbl.Rows[0]["notes"])
	assert.Nil(t, tbl.Rows[1]["beds"])
	assert.Equal(t, "x1", tbl.Rows[1]["rate"])
}

func TestReadCSV_RawStrings(t *testing.T) {
	tbl, err := table.Read("codes.csv", strings.NewReader("code\n007\n"), table.ReadOptions{RawStrings: true})
	require.NoError(t, err)
	assert.Equal(t, "007", tbl.Rows[0]["code"])
}

func TestReadCSV_NullTokens(t *testing.T) {
	in := "name,beds\nnan,NaN\nN/A,inf\n#N/A,NULL\nInfinity,-nan\n"

	for _, raw := range []bool{false, true} {
		tbl, err := table.Read("nulls.csv", strings.NewReader(in), table.ReadOptions{RawStrings: raw})
		require.NoError(t, err)
		require.Equal(t, 4, tbl.Len())
		assert.Nil(t, tbl.Rows[0]["name"])
		assert.Nil(t, tbl.Rows[0]["beds"])
		assert.Nil(t, tbl.Rows[1]["name"])
		assert.Equal(t, "inf", tbl.Rows[1]["beds"], "non-finite text stays a string")
		assert.Nil(t, tbl.Rows[2]["name"])
		assert.Nil(t, tbl.Rows[2]["beds"])
		assert.Equal(t, "Infinity", tbl.Rows[3]["name"])
		assert.Nil(t, tbl.Rows[3]["beds"])
	}
}

func TestReadCSV_KeepsStringWhitespace(t *testing.T) {
	in := "name,beds\n Clinic A , 12 \n"

	tbl, err := table.Read("ws.csv", strings.NewReader(in), table.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, " Clinic A ", tbl.Rows[0]["name"])
	assert.Equal(t, int64(12), tbl.Rows[0]["beds"])

	tbl, err = table.Read("ws.csv", strings.NewReader(in), table.ReadOptions{RawStrings: true})
	require.NoError(t, err)
	assert.Equal(t, " Clinic A ", tbl.Rows[0]["name"])
	assert.Equal(t, " 12 ", tbl.Rows[0]["beds"])
}

func TestReadCSV_TSVAndShortRows(t *testing.T) {
	tbl, err := table.Read("list.tsv", strings.NewReader("a\tb\tc\n1\n\n\t\t\n"), table.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len(), "blank lines are skipped")
	assert.Equal(t, int64(1), tbl.Rows[0]["a"])
	assert.Nil(t, tbl.Rows[0]["c"])
}

func TestReadCSV_Windows1252Fallback(t *testing.T) {
	// "Hôpital" in Windows-1252 (0xF4 = ô).
	in := []byte("name\nH\xF4pital\n")

	tbl, err := table.Read("legacy.csv", bytes.NewReader(in), table.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hôpital", tbl.Rows[0]["name"])
}

func TestReadCSV_HeaderNormalisation(t *testing.T) {
	tbl, err := table.Read("h.csv", strings.NewReader("name,,name\nA,B,C\n"), table.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "Unnamed: 1", "name.1"}, tbl.Columns)
	assert.Equal(t, "C", tbl.Rows[0]["name.1"])
}

func TestRead_Errors(t *testing.T) {
	_, err := table.Read("empty.csv", strings.NewReader(""), table.ReadOptions{})
	assert.ErrorIs(t, err, table.ErrEmptyFile)

	_, err = table.Read("shape.shp", strings.NewReader("x"), table.ReadOptions{})
	assert.ErrorIs(t, err, table.ErrUnsupportedFormat)
}

func TestXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	cols := []string{"name", "beds", "district"}
	rows := [][]any{
		{"Alpha", int64(12), nil},
		{"Beta", 3.5, "North"},
	}
	require.NoError(t, table.WriteXLSX(&buf, "Results", cols, rows))

	tbl, err := table.Read("out.xlsx", &buf, table.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, cols, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Alpha", tbl.Rows[0]["name"])
	assert.Equal(t, int64(12), tbl.Rows[0]["beds"])
	assert.Nil(t, tbl.Rows[0]["district"])
	assert.Equal(t, 3.5, tbl.Rows[1]["beds"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := table.WriteCSV(&buf, []string{"a", "b", "c"}, [][]any{
		{"x, y", 100.0, nil},
		{int64(7), true},
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n\"x, y\",100,\n7,true,\n", buf.String())
}

func TestRename(t *testing.T) {
	tbl := table.New("t", []string{"HF Name", "District"}, []table.Record{
		{"HF Name": "Alpha", "District": "North"},
	})

	renamed, err := tbl.Rename(map[string]string{"HF Name": "facility", "District": ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"facility", "District"}, renamed.Columns)
	assert.Equal(t, "Alpha", renamed.Rows[0]["facility"])
	assert.Equal(t, "Alpha", tbl.Rows[0]["HF Name"], "source table untouched")

	_, err = tbl.Rename(map[string]string{"HF Name": "District"})
	assert.ErrorIs(t, err, table.ErrDuplicateColumn)

	_, err = tbl.Rename(map[string]string{"Missing": "x"})
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestPreviewAndFromRecords(t *testing.T) {
	tbl := table.FromRecords("r", []table.Record{{"b": 1, "a": 2}, {"c": 3}})
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns)
	assert.Len(t, tbl.Preview(1), 1)
	assert.Len(t, tbl.Preview(10), 2)
	assert.True(t, tbl.HasColumn("c"))
	assert.False(t, tbl.HasColumn("d"))
}
