package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/internal/audit/repository"
	"github.com/punchaudit/punchaudit-backend/pkg/database"
	"github.com/punchaudit/punchaudit-backend/pkg/errors"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
	"github.com/punchaudit/punchaudit-backend/pkg/testutil"
)

func TestRunRepository_Postgres(t *testing.T) {
	db := testutil.StartPostgres(t)
	repo := repository.NewRunRepository(database.Wrap(db, logger.Nop()))
	ctx := context.Background()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation must be repeatable")

	first := repository.NewRun(sampleResult(), "punches.csv", true, "ops")
	require.NoError(t, repo.Create(ctx, first))
	assert.False(t, first.CreatedAt.IsZero())

	res := sampleResult()
	res.RequestID = "req_ffffffffffff"
	res.Window.ExcludedDates = nil
	require.NoError(t, repo.Create(ctx, repository.NewRun(res, "other.xlsx", false, "")))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MustParseDate("2024-01-01"), got.StartDate)
	assert.Equal(t, []string{"2024-01-02"}, []string(got.ExcludedDates))
	assert.Equal(t, "ops", *got.RequestedBy)

	err = repo.Create(ctx, first)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	runs, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, runs, 2)

	_, err = repo.GetByID(ctx, "req_000000000000")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
