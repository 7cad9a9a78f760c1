package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrReportNotFound = errors.New("report not found or expired")
	ErrInvalidID      = errors.New("invalid report id")
)

var idPattern = regexp.MustCompile(`^req_[0-9a-f]{12}$`)

// Store persists rendered reports by run id.
type Store interface {
	Save(ctx context.Context, id string, data []byte) error
	Open(ctx context.Context, id string) ([]byte, error)
}

// ValidID reports whether id has the shape of a run id. Ids end up in file
// paths and cache keys, so anything else is refused.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Filename is the download name of the report for id.
func Filename(id string) string {
	return fmt.Sprintf("payroll_report_%s.xlsx", id)
}
