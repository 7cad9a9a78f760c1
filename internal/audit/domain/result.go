package domain

import "time"

// Rule identifiers, used as summary keys and report sheet names.
const (
	RuleExcessDailyHours  = "excess_daily_hours"
	RuleLowRestHours      = "low_rest_hours"
	RuleWeeklyExcessHours = "weekly_excess_hours"
	RuleExcessWorkingDays = "excess_working_days"
)

// ExcessHoursRecord flags a single shift longer than the daily limit.
type ExcessHoursRecord struct {
	EmployeeCode string    `json:"EECode"`
	Name         string    `json:"Name"`
	Date         Date      `json:"Date"`
	ShiftStart   time.Time `json:"Shift_Start"`
	ShiftEnd     time.Time `json:"Shift_End"`
	HoursWorked  float64   `json:"Hours_Worked"`
}

// LowRestRecord flags too short a gap between two consecutive shifts.
type LowRestRecord struct {
	EmployeeCode     string    `json:"EECode"`
	Name             string    `json:"Name"`
	Date             Date      `json:"Date"`
	PreviousShiftEnd time.Time `json:"Previous_Shift_End"`
	NextShiftStart   time.Time `json:"Next_Shift_Start"`
	RestHours        float64   `json:"Rest_Hours"`
}

// WeeklyExcessRecord flags a week at or above the weekly hour limit.
type WeeklyExcessRecord struct {
	EmployeeCode string  `json:"EECode"`
	Name         string  `json:"Name"`
	Week         string  `json:"Week"`
	WeekStart    Date    `json:"Week_Start"`
	WeekEnd      Date    `json:"Week_End"`
	TotalHours   float64 `json:"Total_Hours"`
}

// ExcessDaysRecord flags a week with more working days than allowed.
type ExcessDaysRecord struct {
	EmployeeCode string `json:"EECode"`
	Name         string `json:"Name"`
	Week         string `json:"Week"`
	WeekStart    Date   `json:"Week_Start"`
	WeekEnd      Date   `json:"Week_End"`
	DaysWorked   int    `json:"Days_Worked"`
	FirstDay     Date   `json:"First_Day"`
	LastDay      Date   `json:"Last_Day"`
}

// Flags holds the four independent rule outputs.
type Flags struct {
	ExcessHours  []ExcessHoursRecord
	LowRest      []LowRestRecord
	WeeklyExcess []WeeklyExcessRecord
	ExcessDays   []ExcessDaysRecord
}

// FlagCounts is the per-rule count block of the summary.
type FlagCounts struct {
	ExcessDailyHours  int `json:"excess_daily_hours"`
	LowRestHours      int `json:"low_rest_hours"`
	WeeklyExcessHours int `json:"weekly_excess_hours"`
	ExcessWorkingDays int `json:"excess_working_days"`
}

// Map returns the counts keyed by rule identifier.
func (c FlagCounts) Map() map[string]int {
	return map[string]int{
		RuleExcessDailyHours:  c.ExcessDailyHours,
		RuleLowRestHours:      c.LowRestHours,
		RuleWeeklyExcessHours: c.WeeklyExcessHours,
		RuleExcessWorkingDays: c.ExcessWorkingDays,
	}
}

// Summary is the numeric overview of one run.
type Summary struct {
	RowsReceived    int        `json:"rows_received"`
	RowsAfterFilter int        `json:"rows_after_filter"`
	Employees       int        `json:"employees"`
	Flags           FlagCounts `json:"flags"`
}

// WindowSummary echoes the analysed range back to the caller.
type WindowSummary struct {
	StartDate     Date   `json:"start_date"`
	EndDate       Date   `json:"end_date"`
	ExcludedDates []Date `json:"excluded_dates"`
}

// AnalysisResult is the immutable outcome of one run. Collections are never nil.
type AnalysisResult struct {
	RequestID           string               `json:"request_id"`
	Window              WindowSummary        `json:"window"`
	Summary             Summary              `json:"summary"`
	FlaggedExcessHours  []ExcessHoursRecord  `json:"flagged_excess_hours"`
	FlaggedLowRestHours []LowRestRecord      `json:"flagged_low_rest_hours"`
	FlaggedWeeklyExcess []WeeklyExcessRecord `json:"flagged_weekly_excess"`
	FlaggedExcessDays   []ExcessDaysRecord   `json:"flagged_excess_days"`
	Warnings            []string             `json:"warnings"`
}

// Input is everything the engine needs for one run. The run id is supplied by
// the caller so that identical input always yields identical output.
type Input struct {
	RunID  string
	Header []string
	Rows   [][]string
	Window Window
	Policy Policy
}
