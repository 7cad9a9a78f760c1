package engine

import (
	"math"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// ApplyRules evaluates the four rules independently. Thresholds compare the
// unrounded values; hours in the emitted records are rounded to 2 decimals.
// Neither shifts nor aggregates are modified.
func ApplyRules(shifts []domain.Shift, agg domain.Aggregates, p domain.Policy) domain.Flags {
	flags := domain.Flags{
		ExcessHours:  []domain.ExcessHoursRecord{},
		LowRest:      []domain.LowRestRecord{},
		WeeklyExcess: []domain.WeeklyExcessRecord{},
		ExcessDays:   []domain.ExcessDaysRecord{},
	}

	for _, s := range shifts {
		if s.Hours > p.MaxShiftHours {
			flags.ExcessHours = append(flags.ExcessHours, domain.ExcessHoursRecord{
				EmployeeCode: s.EmployeeCode,
				Name:         s.EmployeeName,
				Date:         s.WorkDate,
				ShiftStart:   s.Start,
				ShiftEnd:     s.End,
				HoursWorked:  round2(s.Hours),
			})
		}
	}

	// Rest gaps run across the whole window, so walk the shifts per employee
	// in start order rather than per day.
	for _, pair := range consecutivePairs(agg.Days) {
		prev, next := pair[0], pair[1]
		rest := next.Start.Sub(prev.End).Hours()
		if rest < p.MinRestHours {
			flags.LowRest = append(flags.LowRest, domain.LowRestRecord{
				EmployeeCode:     next.EmployeeCode,
				Name:             next.EmployeeName,
				Date:             next.WorkDate,
				PreviousShiftEnd: prev.End,
				NextShiftStart:   next.Start,
				RestHours:        round2(rest),
			})
		}
	}

	for _, w := range agg.Weeks {
		if w.TotalHours >= p.MaxWeeklyHours {
			flags.WeeklyExcess = append(flags.WeeklyExcess, domain.WeeklyExcessRecord{
				EmployeeCode: w.EmployeeCode,
				Name:         w.EmployeeName,
				Week:         w.WeekID(),
				WeekStart:    w.WeekStart,
				WeekEnd:      w.WeekEnd,
				TotalHours:   round2(w.TotalHours),
			})
		}
		if w.WorkingDays > p.MaxWorkingDays {
			flags.ExcessDays = append(flags.ExcessDays, domain.ExcessDaysRecord{
				EmployeeCode: w.EmployeeCode,
				Name:         w.EmployeeName,
				Week:         w.WeekID(),
				WeekStart:    w.WeekStart,
				WeekEnd:      w.WeekEnd,
				DaysWorked:   w.WorkingDays,
				FirstDay:     w.FirstDay,
				LastDay:      w.LastDay,
			})
		}
	}

	return flags
}

// consecutivePairs returns each employee's adjacent shifts, in start order.
// Days are already sorted by employee then date and their shifts by start.
func consecutivePairs(days []domain.EmployeeDay) [][2]domain.Shift {
	var pairs [][2]domain.Shift
	var prev *domain.Shift
	for i := range days {
		for j := range days[i].Shifts {
			cur := &days[i].Shifts[j]
			if prev != nil && prev.EmployeeCode == cur.EmployeeCode {
				pairs = append(pairs, [2]domain.Shift{*prev, *cur})
			}
			prev = cur
		}
	}
	return pairs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
