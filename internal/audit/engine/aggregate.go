package engine

import (
	"sort"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

type dayKey struct {
	code string
	date domain.Date
}

type weekKey struct {
	code string
	year int
	week int
}

// Aggregate rolls shifts up into employee days and ISO weeks. The result is
// sorted by employee code then date or week, whatever order the shifts arrive in.
func Aggregate(shifts []domain.Shift) domain.Aggregates {
	ordered := make([]domain.Shift, len(shifts))
	copy(ordered, shifts)
	sort.SliceStable(ordered, func(i, j int) bool { return shiftLess(ordered[i], ordered[j]) })

	days := make(map[dayKey]*domain.EmployeeDay)
	var dayOrder []dayKey
	for _, s := range ordered {
		k := dayKey{code: s.EmployeeCode, date: s.WorkDate}
		d, ok := days[k]
		if !ok {
			d = &domain.EmployeeDay{EmployeeCode: s.EmployeeCode, EmployeeName: s.EmployeeName, Date: s.WorkDate}
			days[k] = d
			dayOrder = append(dayOrder, k)
		}
		d.Shifts = append(d.Shifts, s)
		d.TotalHours += s.Hours
	}

	sort.Slice(dayOrder, func(i, j int) bool {
		if dayOrder[i].code != dayOrder[j].code {
			return dayOrder[i].code < dayOrder[j].code
		}
		return dayOrder[i].date.Before(dayOrder[j].date)
	})

	out := domain.Aggregates{
		Days:  make([]domain.EmployeeDay, 0, len(dayOrder)),
		Weeks: []domain.EmployeeWeek{},
	}

	weeks := make(map[weekKey]int)
	for _, k := range dayOrder {
		d := *days[k]
		out.Days = append(out.Days, d)

		year, week := d.Date.ISOWeek()
		wk := weekKey{code: d.EmployeeCode, year: year, week: week}
		idx, ok := weeks[wk]
		if !ok {
			start := d.Date.WeekStart()
			out.Weeks = append(out.Weeks, domain.EmployeeWeek{
				EmployeeCode: d.EmployeeCode,
				EmployeeName: d.EmployeeName,
				ISOYear:      year,
				ISOWeek:      week,
				WeekStart:    start,
				WeekEnd:      start.AddDays(6),
				FirstDay:     d.Date,
			})
			idx = len(out.Weeks) - 1
			weeks[wk] = idx
		}
		w := &out.Weeks[idx]
		w.TotalHours += d.TotalHours
		if len(d.Shifts) > 0 {
			w.WorkingDays++
		}
		w.LastDay = d.Date
	}

	return out
}
