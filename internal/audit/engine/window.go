package engine

import "github.com/punchaudit/punchaudit-backend/internal/audit/domain"

// FilterWindow keeps the shifts whose work date lies in the window and is not excluded.
// Input order is preserved and shifts are not modified.
func FilterWindow(shifts []domain.Shift, w domain.Window) []domain.Shift {
	kept := make([]domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		if w.Contains(s.WorkDate) {
			kept = append(kept, s)
		}
	}
	return kept
}
