package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/internal/audit/engine"
)

func TestResolveEnd(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		want    string
		wantOK  bool
	}{
		{"same day", "2024-01-01 08:00:00", "2024-01-01 16:00:00", "2024-01-01 16:00:00", true},
		{"next day", "2024-01-01 22:00:00", "2024-01-02 03:00:00", "2024-01-02 03:00:00", true},
		{"out clocked on the in date", "2024-01-01 22:00:00", "2024-01-01 03:00:00", "2024-01-02 03:00:00", true},
		{"identical", "2024-01-01 08:00:00", "2024-01-01 08:00:00", "2024-01-01 08:00:00", true},
		{"out dated before in", "2024-01-02 08:00:00", "2024-01-01 16:00:00", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := engine.ResolveEnd(ts(tt.in), ts(tt.out))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, ts(tt.want), got)
			}
		})
	}
}

func TestBuildShifts(t *testing.T) {
	punches := []domain.NormalizedPunch{
		{Row: 2, EmployeeCode: "B", In: ptr(ts("2024-01-02 08:00:00")), Out: ptr(ts("2024-01-02 16:00:00"))},
		{Row: 3, EmployeeCode: "A", In: ptr(ts("2024-01-03 08:00:00")), Out: ptr(ts("2024-01-03 08:00:00"))},
		{Row: 4, EmployeeCode: "A", In: ptr(ts("2024-01-01 08:00:00")), Out: ptr(ts("2024-01-02 12:00:00"))},
		{Row: 5, EmployeeCode: "A", Out: ptr(ts("2024-01-04 08:00:00"))},
		{Row: 6, EmployeeCode: "B", In: ptr(ts("2024-01-05 08:00:00")), Out: ptr(ts("2024-01-04 08:00:00"))},
	}
	original := append([]domain.NormalizedPunch(nil), punches...)

	shifts, warnings := engine.BuildShifts(punches, 24)

	require.Len(t, shifts, 3)
	assert.Equal(t, []int{4, 3, 2}, []int{shifts[0].Row, shifts[1].Row, shifts[2].Row})
	assert.Equal(t, 28.0, shifts[0].Hours)
	assert.Equal(t, 0.0, shifts[1].Hours, "identical punches give a zero-length shift")
	assert.Equal(t, domain.MustParseDate("2024-01-03"), shifts[1].WorkDate)

	assert.Equal(t, []string{
		"row 4: implausible shift duration 28.00h for employee A",
		"row 5: unmatched out-punch for employee A",
		"row 6: out-punch precedes in-punch for employee B (2024-01-04 08:00:00 < 2024-01-05 08:00:00)",
	}, warnings)
	assert.Equal(t, original, punches, "input must not be reordered")
}

func TestBuildShifts_ImplausibleLimitDisabled(t *testing.T) {
	_, warnings := engine.BuildShifts([]domain.NormalizedPunch{
		{Row: 2, EmployeeCode: "A", In: ptr(ts("2024-01-01 08:00:00")), Out: ptr(ts("2024-01-03 08:00:00"))},
	}, 0)
	assert.Empty(t, warnings)
}

func TestFilterWindow(t *testing.T) {
	shifts := []domain.Shift{
		mkShift("A", ts("2023-12-31 08:00:00"), 8),
		mkShift("A", ts("2024-01-01 08:00:00"), 8),
		mkShift("A", ts("2024-01-02 08:00:00"), 8),
		mkShift("A", ts("2024-01-03 23:00:00"), 8),
		mkShift("A", ts("2024-01-04 08:00:00"), 8),
	}

	kept := engine.FilterWindow(shifts, window("2024-01-01", "2024-01-03", "2024-01-02"))

	require.Len(t, kept, 2)
	assert.Equal(t, shifts[1], kept[0])
	assert.Equal(t, shifts[3], kept[1], "a shift is kept by its start date even if it ends after the window")
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, window("2024-01-01", "2024-01-01").Validate())
	assert.ErrorIs(t, window("2024-01-02", "2024-01-01").Validate(), domain.ErrInvalidRange)
	assert.Error(t, domain.Window{}.Validate())
}
