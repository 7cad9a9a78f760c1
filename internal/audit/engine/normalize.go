package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// Timestamp layouts accepted for InPunchTime/OutPunchTime, tried in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// Excel serial numbers between these bounds (1927..2064) are read as dates.
const (
	minExcelSerial = 10000.0
	maxExcelSerial = 60000.0
)

// CleanHeader strips a UTF-8 BOM and surrounding whitespace from a header cell.
func CleanHeader(h string) string {
	return strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
}

// ParseTimestamp parses a punch cell. It returns ok=false for anything it cannot read.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Round(time.Second), true
		}
	}
	return time.Time{}, false
}

// Normalize validates the header and turns raw rows into punches. Row numbers in
// warnings are spreadsheet lines: the header is line 1, the first data row line 2.
// Only a missing required header is fatal.
func Normalize(header []string, rows [][]string) ([]domain.NormalizedPunch, []string, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := CleanHeader(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	punches := make([]domain.NormalizedPunch, 0, len(rows))
	var warnings []string

	for i, row := range rows {
		rowNum := i + 2

		code := cell(row, domain.ColEmployeeCode)
		if code == "" {
			warnings = append(warnings, fmt.Sprintf("missing employee code at row %d", rowNum))
			continue
		}

		rawIn, rawOut := cell(row, domain.ColInPunch), cell(row, domain.ColOutPunch)
		if rawIn == "" && rawOut == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: no punch times", rowNum))
			continue
		}

		var problems []string
		in, inOK := parseSide(rawIn, domain.ColInPunch, &problems)
		out, outOK := parseSide(rawOut, domain.ColOutPunch, &problems)
		if !inOK || !outOK {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", rowNum, strings.Join(problems, "; ")))
			continue
		}

		name := strings.TrimSpace(cell(row, domain.ColFirstName) + " " + cell(row, domain.ColLastName))
		punches = append(punches, domain.NormalizedPunch{
			Row:          rowNum,
			EmployeeCode: code,
			EmployeeName: name,
			In:           in,
			Out:          out,
		})
	}

	return punches, warnings, nil
}

// parseSide returns nil,true for an empty cell and records a problem for an unreadable one.
func parseSide(raw, field string, problems *[]string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		*problems = append(*problems, fmt.Sprintf("invalid %s %q", field, raw))
		return nil, false
	}
	return &t, true
}
