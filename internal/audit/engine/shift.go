package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// ResolveEnd applies the overnight rule to one punch pair. An out-punch earlier
// than the in-punch on the same calendar date is read as the next day's clock.
// Equal punches give a zero-length shift. An out-punch dated before the in-punch
// cannot be repaired and yields ok=false.
func ResolveEnd(in, out time.Time) (time.Time, bool) {
	if !out.Before(in) {
		return out, true
	}
	if domain.DateOf(out) == domain.DateOf(in) {
		return out.Add(24 * time.Hour), true
	}
	return time.Time{}, false
}

// BuildShifts pairs each punch into a shift. Unmatched or unrepairable punches
// produce one warning each and no shift. Shifts longer than implausibleHours are
// kept and warned about. Output is ordered by employee code, start, then row.
func BuildShifts(punches []domain.NormalizedPunch, implausibleHours float64) ([]domain.Shift, []string) {
	ordered := make([]domain.NormalizedPunch, len(punches))
	copy(ordered, punches)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.EmployeeCode != b.EmployeeCode {
			return a.EmployeeCode < b.EmployeeCode
		}
		ta, tb := punchTime(a), punchTime(b)
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a.Row < b.Row
	})

	shifts := make([]domain.Shift, 0, len(ordered))
	var warnings []string

	for _, p := range ordered {
		switch {
		case p.In == nil:
			warnings = append(warnings, fmt.Sprintf("row %d: unmatched out-punch for employee %s", p.Row, p.EmployeeCode))
			continue
		case p.Out == nil:
			warnings = append(warnings, fmt.Sprintf("row %d: unmatched in-punch for employee %s", p.Row, p.EmployeeCode))
			continue
		}

		end, ok := ResolveEnd(*p.In, *p.Out)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("row %d: out-punch precedes in-punch for employee %s (%s < %s)",
				p.Row, p.EmployeeCode, p.Out.Format(time.DateTime), p.In.Format(time.DateTime)))
			continue
		}

		hours := end.Sub(*p.In).Hours()
		if implausibleHours > 0 && hours > implausibleHours {
			warnings = append(warnings, fmt.Sprintf("row %d: implausible shift duration %.2fh for employee %s",
				p.Row, hours, p.EmployeeCode))
		}

		shifts = append(shifts, domain.Shift{
			Row:          p.Row,
			EmployeeCode: p.EmployeeCode,
			EmployeeName: p.EmployeeName,
			Start:        *p.In,
			End:          end,
			Hours:        hours,
			WorkDate:     domain.DateOf(*p.In),
		})
	}

	sort.SliceStable(shifts, func(i, j int) bool { return shiftLess(shifts[i], shifts[j]) })
	return shifts, warnings
}

func punchTime(p domain.NormalizedPunch) time.Time {
	if p.In != nil {
		return *p.In
	}
	if p.Out != nil {
		return *p.Out
	}
	return time.Time{}
}

func shiftLess(a, b domain.Shift) bool {
	if a.EmployeeCode != b.EmployeeCode {
		return a.EmployeeCode < b.EmployeeCode
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.Row < b.Row
}
