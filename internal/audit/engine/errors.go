package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

// ErrSchema is matched by every SchemaError.
var ErrSchema = errors.New("schema error")

// ErrInvalidRange is returned by Run when the window starts after it ends.
var ErrInvalidRange = domain.ErrInvalidRange

// SchemaError reports required headers that are absent from the upload.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s. Expected headers: %s",
		strings.Join(e.Missing, ", "), strings.Join(domain.RequiredColumns, ", "))
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
