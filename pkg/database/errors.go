package database

import (
	"github.com/lib/pq"

	"github.com/punchaudit/punchaudit-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with a client-safe message.
// Returns nil if the error is not a pq.Error or has no useful mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// unique_violation
	case "23505":
		return errors.Conflict("a run with this id already exists")

	// check_violation
	case "23514":
		return errors.BadRequest("data validation failed: " + pqErr.Constraint)

	// not_null_violation
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// undefined_table: history schema missing
	case "42P01":
		return errors.Unavailable("run history is not initialised")

	default:
		return nil
	}
}
