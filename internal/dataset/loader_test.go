package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visits.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "Visit Date,Department,Doctor,Waiting Minutes\n"+
		"2024-01-02,Cardiology,Dr. A,20\n"+
		"\n"+
		"2024-01-03,Dermatology,Dr. B,45\n")

	table, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Visit Date", "Department", "Doctor", "Waiting Minutes"}, table.Columns)
	require.Len(t, table.Rows, 2, "empty rows are skipped")
	assert.Equal(t, "Cardiology", table.Cell(table.Rows[0], 1))
	assert.False(t, table.Empty())
}

func TestLoadCSVWithBOM(t *testing.T) {
	path := writeTempCSV(t, "\uFEFFVisit Date,Department\n2024-01-02,Cardiology\n")

	table, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "Visit Date", table.Columns[0])
	assert.Equal(t, 0, table.ColumnIndex("Visit Date"))
}

func TestLoadCSVRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "A,B,C\n1,2\n1,2,3,4\n")

	table, err := Load(path, "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Cell(table.Rows[0], 2))
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "A,B,C\n")

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := Load(path, "")
	assert.ErrorContains(t, err, "no header row")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), "")
	assert.Error(t, err)
}

func writeTempXLSX(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "visits.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadExcel(t *testing.T) {
	path := writeTempXLSX(t, "Visits", [][]interface{}{
		{"Visit Date", "Department", "Doctor", "Waiting Minutes"},
		{"2024-01-02", "Cardiology", "Dr. A", 20},
		{"2024-01-03", "Dermatology", "Dr. B", 45},
	})

	table, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Visit Date", "Department", "Doctor", "Waiting Minutes"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "20", table.Cell(table.Rows[0], 3))
}

func TestLoadExcelNamedSheet(t *testing.T) {
	path := writeTempXLSX(t, "Visits", [][]interface{}{
		{"A", "B"},
		{"1", "2"},
	})

	table, err := Load(path, "Visits")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, err = Load(path, "Missing")
	assert.ErrorContains(t, err, "Missing")
}

func TestLoadExcelLeadingBlankRows(t *testing.T) {
	path := writeTempXLSX(t, "Sheet1", [][]interface{}{
		{},
		{"", ""},
		{"A", "B"},
		{"1", "2"},
	})

	table, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Columns)
	require.Len(t, table.Rows, 1)
}
