package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/pkg/database"
	"github.com/punchaudit/punchaudit-backend/pkg/errors"
)

// Run is the stored summary of one analysis. Flag details are not kept;
// they live in the downloadable report.
type Run struct {
	ID                string         `db:"id" json:"request_id"`
	SourceFilename    string         `db:"source_filename" json:"source_filename"`
	StartDate         domain.Date    `db:"start_date" json:"start_date"`
	EndDate           domain.Date    `db:"end_date" json:"end_date"`
	ExcludedDates     pq.StringArray `db:"excluded_dates" json:"excluded_dates"`
	RowsReceived      int            `db:"rows_received" json:"rows_received"`
	RowsAfterFilter   int            `db:"rows_after_filter" json:"rows_after_filter"`
	Employees         int            `db:"employees" json:"employees"`
	ExcessDailyHours  int            `db:"excess_daily_hours" json:"excess_daily_hours"`
	LowRestHours      int            `db:"low_rest_hours" json:"low_rest_hours"`
	WeeklyExcessHours int            `db:"weekly_excess_hours" json:"weekly_excess_hours"`
	ExcessWorkingDays int            `db:"excess_working_days" json:"excess_working_days"`
	WarningCount      int            `db:"warning_count" json:"warning_count"`
	ReportAvailable   bool           `db:"report_available" json:"report_available"`
	RequestedBy       *string        `db:"requested_by" json:"requested_by,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// NewRun copies the summary of res into a Run.
func NewRun(res *domain.AnalysisResult, sourceFilename string, reportAvailable bool, requestedBy string) *Run {
	excluded := make([]string, len(res.Window.ExcludedDates))
	for i, d := range res.Window.ExcludedDates {
		excluded[i] = d.String()
	}

	run := &Run{
		ID:                res.RequestID,
		SourceFilename:    sourceFilename,
		StartDate:         res.Window.StartDate,
		EndDate:           res.Window.EndDate,
		ExcludedDates:     excluded,
		RowsReceived:      res.Summary.RowsReceived,
		RowsAfterFilter:   res.Summary.RowsAfterFilter,
		Employees:         res.Summary.Employees,
		ExcessDailyHours:  res.Summary.Flags.ExcessDailyHours,
		LowRestHours:      res.Summary.Flags.LowRestHours,
		WeeklyExcessHours: res.Summary.Flags.WeeklyExcessHours,
		ExcessWorkingDays: res.Summary.Flags.ExcessWorkingDays,
		WarningCount:      len(res.Warnings),
		ReportAvailable:   reportAvailable,
	}
	if requestedBy != "" {
		run.RequestedBy = &requestedBy
	}
	return run
}

// RunRepository handles analysis run persistence
type RunRepository struct {
	db *database.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.DB) *RunRepository {
	return &RunRepository{db: db}
}

// schema is applied statement by statement inside one transaction.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id                  TEXT PRIMARY KEY,
		source_filename     TEXT NOT NULL,
		start_date          DATE NOT NULL,
		end_date            DATE NOT NULL,
		excluded_dates      TEXT[] NOT NULL DEFAULT '{}',
		rows_received       INTEGER NOT NULL,
		rows_after_filter   INTEGER NOT NULL,
		employees           INTEGER NOT NULL,
		excess_daily_hours  INTEGER NOT NULL DEFAULT 0,
		low_rest_hours      INTEGER NOT NULL DEFAULT 0,
		weekly_excess_hours INTEGER NOT NULL DEFAULT 0,
		excess_working_days INTEGER NOT NULL DEFAULT 0,
		warning_count       INTEGER NOT NULL DEFAULT 0,
		report_available    BOOLEAN NOT NULL DEFAULT FALSE,
		requested_by        TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT analysis_runs_window_check CHECK (start_date <= end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs (created_at DESC)`,
}

// EnsureSchema creates the runs table and its index if they do not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create analysis_runs schema: %w", err)
			}
		}
		return nil
	})
}

// Create inserts a run and fills in its creation time.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO analysis_runs (
			id, source_filename, start_date, end_date, excluded_dates,
			rows_received, rows_after_filter, employees,
			excess_daily_hours, low_rest_hours, weekly_excess_hours, excess_working_days,
			warning_count, report_available, requested_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		run.ID, run.SourceFilename, run.StartDate, run.EndDate, pq.Array([]string(run.ExcludedDates)),
		run.RowsReceived, run.RowsAfterFilter, run.Employees,
		run.ExcessDailyHours, run.LowRestHours, run.WeeklyExcessHours, run.ExcessWorkingDays,
		run.WarningCount, run.ReportAvailable, run.RequestedBy,
	).Scan(&run.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

const selectColumns = `
	id, source_filename, start_date, end_date, excluded_dates,
	rows_received, rows_after_filter, employees,
	excess_daily_hours, low_rest_hours, weekly_excess_hours, excess_working_days,
	warning_count, report_available, requested_by, created_at
`

// GetByID gets a run by its request id
func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	var run Run
	query := `SELECT ` + selectColumns + ` FROM analysis_runs WHERE id = $1`

	err := r.db.GetContext(ctx, &run, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("analysis_run")
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first together with the total number of runs.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]*Run, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM analysis_runs`); err != nil {
		return nil, 0, err
	}

	runs := []*Run{}
	query := `SELECT ` + selectColumns + ` FROM analysis_runs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &runs, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
