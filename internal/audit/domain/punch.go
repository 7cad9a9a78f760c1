package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Required input columns, in the order they are reported back to callers.
const (
	ColEmployeeCode = "EECode"
	ColFirstName    = "Firstname"
	ColLastName     = "Lastname"
	ColInPunch      = "InPunchTime"
	ColOutPunch     = "OutPunchTime"
)

// RequiredColumns lists the headers every upload must carry.
var RequiredColumns = []string{ColEmployeeCode, ColFirstName, ColLastName, ColInPunch, ColOutPunch}

// ErrInvalidRange is returned when a window starts after it ends.
var ErrInvalidRange = errors.New("start_date must be earlier than or equal to end_date")

// NormalizedPunch is one validated input row. In or Out is nil when that side
// of the punch was left empty.
type NormalizedPunch struct {
	Row          int
	EmployeeCode string
	EmployeeName string
	In           *time.Time
	Out          *time.Time
}

// Shift is a paired in/out interval attributed to the date it started on.
type Shift struct {
	Row          int
	EmployeeCode string
	EmployeeName string
	Start        time.Time
	End          time.Time
	Hours        float64
	WorkDate     Date
}

// Window is the inclusive date range an analysis covers plus dates to skip.
type Window struct {
	Start    Date
	End      Date
	Excluded map[Date]struct{}
}

// NewWindow builds a window, de-duplicating the excluded dates.
func NewWindow(start, end Date, excluded ...Date) Window {
	w := Window{Start: start, End: end, Excluded: make(map[Date]struct{}, len(excluded))}
	for _, d := range excluded {
		w.Excluded[d] = struct{}{}
	}
	return w
}

// Validate rejects a window whose start is after its end.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if w.Start.After(w.End) {
		return fmt.Errorf("%w (got %s > %s)", ErrInvalidRange, w.Start, w.End)
	}
	return nil
}

// Contains reports whether d is inside the range and not excluded.
func (w Window) Contains(d Date) bool {
	if d.Before(w.Start) || d.After(w.End) {
		return false
	}
	_, skip := w.Excluded[d]
	return !skip
}

// ExcludedDates returns the excluded dates in ascending order.
func (w Window) ExcludedDates() []Date {
	out := make([]Date, 0, len(w.Excluded))
	for d := range w.Excluded {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Policy holds the four rule thresholds and the implausible-shift warning limit.
type Policy struct {
	MaxShiftHours         float64
	MinRestHours          float64
	MaxWeeklyHours        float64
	MaxWorkingDays        int
	ImplausibleShiftHours float64
}

// DefaultPolicy returns the standard thresholds: >12h shift, <10h rest, >=60h week, >6 days.
func DefaultPolicy() Policy {
	return Policy{
		MaxShiftHours:         12,
		MinRestHours:          10,
		MaxWeeklyHours:        60,
		MaxWorkingDays:        6,
		ImplausibleShiftHours: 24,
	}
}
