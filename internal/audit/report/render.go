// Package report renders analysis results as xlsx workbooks and keeps them
// available for download.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// Fixed sheet titles. The weekly sheets are titled from the policy.
const (
	SheetSummary     = "Summary"
	SheetExcessHours = "Excess Daily Hours"
	SheetLowRest     = "Low Rest Hours"
	SheetWarnings    = "Warnings"
)

// ContentType is the MIME type of a rendered report.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	dateTimeNumFmt     = "yyyy-mm-dd hh:mm"
	dateNumFmt         = "yyyy-mm-dd"
	defaultColumnWidth = 14
)

type cellKind int

const (
	kindText cellKind = iota
	kindNumber
	kindDate
	kindDateTime
)

type column struct {
	title string
	width float64
	kind  cellKind
}

// Renderer builds the downloadable workbook for one result.
type Renderer struct {
	policy domain.Policy
}

// NewRenderer returns a renderer whose sheet titles reflect the given thresholds.
func NewRenderer(policy domain.Policy) *Renderer {
	return &Renderer{policy: policy}
}

// WeeklyExcessSheet is the title of the weekly hours sheet.
func (r *Renderer) WeeklyExcessSheet() string {
	return fmt.Sprintf("Weekly Excess (>=%g)", r.policy.MaxWeeklyHours)
}

// ExcessDaysSheet is the title of the working days sheet.
func (r *Renderer) ExcessDaysSheet() string {
	return fmt.Sprintf("Excess Days (>%d)", r.policy.MaxWorkingDays)
}

// Render writes every flag collection to its own sheet, followed by a summary
// and the warnings list.
func (r *Renderer) Render(res *domain.AnalysisResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name    string
		columns []column
		rows    [][]interface{}
	}{
		{SheetExcessHours, excessHoursColumns, excessHoursRows(res.FlaggedExcessHours)},
		{SheetLowRest, lowRestColumns, lowRestRows(res.FlaggedLowRestHours)},
		{r.WeeklyExcessSheet(), weeklyExcessColumns, weeklyExcessRows(res.FlaggedWeeklyExcess)},
		{r.ExcessDaysSheet(), excessDaysColumns, excessDaysRows(res.FlaggedExcessDays)},
		{SheetSummary, summaryColumns, summaryRows(res)},
		{SheetWarnings, warningColumns, warningRows(res.Warnings)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.name, err)
		}
		if err := writeSheet(f, s.name, s.columns, s.rows, styles); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styleSet struct {
	header   int
	date     int
	dateTime int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	dateFmt := dateNumFmt
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}

	dateTimeFmt := dateTimeNumFmt
	dateTime, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateTimeFmt})
	if err != nil {
		return nil, fmt.Errorf("datetime style: %w", err)
	}

	return &styleSet{header: header, date: date, dateTime: dateTime}, nil
}

func writeSheet(f *excelize.File, sheet string, columns []column, rows [][]interface{}, styles *styleSet) error {
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.title
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	last := colName(len(columns))
	if err := f.SetCellStyle(sheet, "A1", last+"1", styles.header); err != nil {
		return err
	}

	for i, row := range rows {
		row := row
		if err := f.SetSheetRow(sheet, cell("A", i+2), &row); err != nil {
			return err
		}
	}

	for i, c := range columns {
		name := colName(i + 1)
		width := c.width
		if width == 0 {
			width = defaultColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}

		style := 0
		switch c.kind {
		case kindDate:
			style = styles.date
		case kindDateTime:
			style = styles.dateTime
		}
		if style == 0 {
			continue
		}
		if err := f.SetCellStyle(sheet, cell(name, 2), cell(name, len(rows)+1), style); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

var (
	excessHoursColumns = []column{
		{"EECode", 12, kindText}, {"Name", 28, kindText}, {"Date", 12, kindDate},
		{"Shift_Start", 18, kindDateTime}, {"Shift_End", 18, kindDateTime}, {"Hours_Worked", 14, kindNumber},
	}
	lowRestColumns = []column{
		{"EECode", 12, kindText}, {"Name", 28, kindText}, {"Date", 12, kindDate},
		{"Previous_Shift_End", 20, kindDateTime}, {"Next_Shift_Start", 20, kindDateTime}, {"Rest_Hours", 12, kindNumber},
	}
	weeklyExcessColumns = []column{
		{"EECode", 12, kindText}, {"Name", 28, kindText}, {"Week", 10, kindText},
		{"Week_Start", 12, kindDate}, {"Week_End", 12, kindDate}, {"Total_Hours", 12, kindNumber},
	}
	excessDaysColumns = []column{
		{"EECode", 12, kindText}, {"Name", 28, kindText}, {"Week", 10, kindText},
		{"Week_Start", 12, kindDate}, {"Week_End", 12, kindDate}, {"Days_Worked", 12, kindNumber},
		{"First_Day", 12, kindDate}, {"Last_Day", 12, kindDate},
	}
	summaryColumns = []column{{"Field", 26, kindText}, {"Value", 40, kindText}}
	warningColumns = []column{{"Warning", 100, kindText}}
)

func excessHoursRows(records []domain.ExcessHoursRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.EmployeeCode, r.Name, r.Date.Time(), r.ShiftStart, r.ShiftEnd, r.HoursWorked})
	}
	return rows
}

func lowRestRows(records []domain.LowRestRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.EmployeeCode, r.Name, r.Date.Time(), r.PreviousShiftEnd, r.NextShiftStart, r.RestHours})
	}
	return rows
}

func weeklyExcessRows(records []domain.WeeklyExcessRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.EmployeeCode, r.Name, r.Week, r.WeekStart.Time(), r.WeekEnd.Time(), r.TotalHours})
	}
	return rows
}

func excessDaysRows(records []domain.ExcessDaysRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.EmployeeCode, r.Name, r.Week, r.WeekStart.Time(), r.WeekEnd.Time(),
			r.DaysWorked, r.FirstDay.Time(), r.LastDay.Time(),
		})
	}
	return rows
}

func summaryRows(res *domain.AnalysisResult) [][]interface{} {
	excluded := make([]string, len(res.Window.ExcludedDates))
	for i, d := range res.Window.ExcludedDates {
		excluded[i] = d.String()
	}

	return [][]interface{}{
		{"request_id", res.RequestID},
		{"start_date", res.Window.StartDate.String()},
		{"end_date", res.Window.EndDate.String()},
		{"excluded_dates", strings.Join(excluded, ", ")},
		{"rows_received", res.Summary.RowsReceived},
		{"rows_after_filter", res.Summary.RowsAfterFilter},
		{"employees", res.Summary.Employees},
		{domain.RuleExcessDailyHours, res.Summary.Flags.ExcessDailyHours},
		{domain.RuleLowRestHours, res.Summary.Flags.LowRestHours},
		{domain.RuleWeeklyExcessHours, res.Summary.Flags.WeeklyExcessHours},
		{domain.RuleExcessWorkingDays, res.Summary.Flags.ExcessWorkingDays},
		{"warnings", len(res.Warnings)},
	}
}

func warningRows(warnings []string) [][]interface{} {
	rows := make([][]interface{}, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []interface{}{w})
	}
	return rows
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
