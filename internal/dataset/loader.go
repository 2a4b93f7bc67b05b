package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a visit dataset from disk. The format is selected by file
// extension: .csv is read as delimited text, anything else is tried as
// an Excel workbook. Sheet selects a worksheet by name; when empty the
// first sheet containing data is used.
//
// A file that cannot be read or parsed is a terminal error for the run.
func Load(path, sheet string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path)
	}
	return loadExcel(path, sheet)
}

func loadExcel(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	var sheetName string

	if sheet != "" {
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		sheetName = sheet
	} else {
		// Use the first sheet that actually contains data
		for _, name := range f.GetSheetList() {
			testRows, testErr := f.GetRows(name)
			if testErr == nil && len(testRows) > 0 {
				rows = testRows
				sheetName = name
				break
			}
		}
		if sheetName == "" {
			return nil, fmt.Errorf("no sheet with data found in %s", path)
		}
	}

	table, err := fromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	slog.Debug("loaded Excel dataset",
		slog.String("path", path),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

func loadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, record)
	}

	table, err := fromRows(rows)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded CSV dataset",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// fromRows builds a Table from raw rows. The header is the first row
// with any non-empty cell; fully empty data rows are skipped.
func fromRows(rows [][]string) (*Table, error) {
	headerRow := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, fmt.Errorf("no header row found")
	}

	columns := make([]string, len(rows[headerRow]))
	for i, c := range rows[headerRow] {
		if i == 0 {
			// Strip the UTF-8 BOM Excel prepends to exported CSVs
			c = strings.TrimPrefix(c, "\uFEFF")
		}
		columns[i] = strings.TrimSpace(c)
	}

	table := &Table{Columns: columns}
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
