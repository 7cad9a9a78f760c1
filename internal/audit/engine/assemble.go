// Package engine turns raw punch rows into policy-violation flags.
//
// Every stage is a pure function returning its records alongside any warnings,
// so a bad row is reported and skipped instead of aborting the run. Only a
// missing header (ErrSchema) or an inverted date window (ErrInvalidRange) fail.
package engine

import (
	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// Assemble builds the final result from the stage outputs.
func Assemble(runID string, w domain.Window, rowsReceived int, kept []domain.Shift, flags domain.Flags, warnings []string) *domain.AnalysisResult {
	employees := make(map[string]struct{})
	for _, s := range kept {
		employees[s.EmployeeCode] = struct{}{}
	}

	if warnings == nil {
		warnings = []string{}
	}

	return &domain.AnalysisResult{
		RequestID: runID,
		Window: domain.WindowSummary{
			StartDate:     w.Start,
			EndDate:       w.End,
			ExcludedDates: w.ExcludedDates(),
		},
		Summary: domain.Summary{
			RowsReceived:    rowsReceived,
			RowsAfterFilter: len(kept),
			Employees:       len(employees),
			Flags: domain.FlagCounts{
				ExcessDailyHours:  len(flags.ExcessHours),
				LowRestHours:      len(flags.LowRest),
				WeeklyExcessHours: len(flags.WeeklyExcess),
				ExcessWorkingDays: len(flags.ExcessDays),
			},
		},
		FlaggedExcessHours:  nonNil(flags.ExcessHours),
		FlaggedLowRestHours: nonNil(flags.LowRest),
		FlaggedWeeklyExcess: nonNil(flags.WeeklyExcess),
		FlaggedExcessDays:   nonNil(flags.ExcessDays),
		Warnings:            warnings,
	}
}

// Run validates the window and runs every stage in order. A zero Policy means
// DefaultPolicy.
func Run(in domain.Input) (*domain.AnalysisResult, error) {
	if err := in.Window.Validate(); err != nil {
		return nil, err
	}

	policy := in.Policy
	if policy == (domain.Policy{}) {
		policy = domain.DefaultPolicy()
	}

	punches, warnings, err := Normalize(in.Header, in.Rows)
	if err != nil {
		return nil, err
	}

	shifts, buildWarnings := BuildShifts(punches, policy.ImplausibleShiftHours)
	warnings = append(warnings, buildWarnings...)

	kept := FilterWindow(shifts, in.Window)
	agg := Aggregate(kept)
	flags := ApplyRules(kept, agg, policy)

	return Assemble(in.RunID, in.Window, len(in.Rows), kept, flags, warnings), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
