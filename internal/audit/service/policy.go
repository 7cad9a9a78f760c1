package service

import (
	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/pkg/config"
)

// PolicyFromConfig converts the configured thresholds.
func PolicyFromConfig(cfg config.PolicyConfig) domain.Policy {
	return domain.Policy{
		MaxShiftHours:         cfg.MaxShiftHours,
		MinRestHours:          cfg.MinRestHours,
		MaxWeeklyHours:        cfg.MaxWeeklyHours,
		MaxWorkingDays:        cfg.MaxWorkingDays,
		ImplausibleShiftHours: cfg.ImplausibleShiftHours,
	}
}
