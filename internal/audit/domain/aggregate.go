package domain

import "fmt"

// EmployeeDay is everything one employee worked on one date.
type EmployeeDay struct {
	EmployeeCode string
	EmployeeName string
	Date         Date
	Shifts       []Shift
	TotalHours   float64
}

// EmployeeWeek totals one employee's work over one ISO week.
type EmployeeWeek struct {
	EmployeeCode string
	EmployeeName string
	ISOYear      int
	ISOWeek      int
	WeekStart    Date
	WeekEnd      Date
	TotalHours   float64
	WorkingDays  int
	FirstDay     Date
	LastDay      Date
}

// WeekID formats the ISO week as 2025-W07.
func (w EmployeeWeek) WeekID() string {
	return fmt.Sprintf("%04d-W%02d", w.ISOYear, w.ISOWeek)
}

// Aggregates are the per-day and per-week rollups, sorted by employee then time.
type Aggregates struct {
	Days  []EmployeeDay
	Weeks []EmployeeWeek
}
