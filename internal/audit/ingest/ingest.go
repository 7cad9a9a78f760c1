// Package ingest turns uploaded punch exports into a header row plus data rows.
// It knows about file formats only; column semantics live in the engine.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows caps legacy workbook reads.
const maxXLSRows = 100000

var (
	ErrUnsupportedFile = errors.New("unsupported file type; upload a .csv, .xlsx or .xls file")
	ErrEmptyFile       = errors.New("file is empty")
	ErrMultipleSheets  = errors.New("multiple worksheets found; upload a workbook with a single sheet")
)

// Table is a decoded sheet. Rows excludes the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// SupportedExtensions lists the accepted upload extensions.
var SupportedExtensions = []string{".csv", ".xlsx", ".xlsm", ".xltx", ".xltm", ".xls"}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Read decodes r according to the extension of filename.
func Read(filename string, r io.Reader) (*Table, error) {
	if !Supported(filename) {
		return nil, ErrUnsupportedFile
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xls":
		rows, err = readXLS(data)
	default:
		rows, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	rows = trimTrailingEmpty(rows)
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rows, err := parseCSV(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if rowWrapped(rows) {
		return unwrapRows(rows)
	}
	return rows, nil
}

func parseCSV(s string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// rowWrapped detects exports where every line is a single quoted string
// holding the comma separated fields.
func rowWrapped(rows [][]string) bool {
	if len(rows) == 0 || len(rows[0]) != 1 {
		return false
	}
	if !strings.Contains(rows[0][0], ",") {
		return false
	}
	for _, row := range rows {
		if len(row) > 1 {
			return false
		}
	}
	return true
}

func unwrapRows(rows [][]string) ([][]string, error) {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			out = append(out, nil)
			continue
		}
		inner, err := parseCSV(row[0])
		if err != nil {
			return nil, fmt.Errorf("parse wrapped csv line %d: %w", i+1, err)
		}
		if len(inner) == 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, inner[0])
	}
	return out, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrEmptyFile
	}
	if wb.NumSheets() > 1 {
		return nil, ErrMultipleSheets
	}
	return wb.ReadAllCells(maxXLSRows), nil
}

func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && emptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
