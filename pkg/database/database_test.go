package database_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/pkg/database"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
	"github.com/punchaudit/punchaudit-backend/pkg/testutil"
)

func TestTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		db := database.Wrap(mockDB.DB, logger.Nop())

		mockDB.ExpectBegin()
		mockDB.ExpectExec("DELETE FROM analysis_runs").WillReturnResult(testutil.Result(0, 2))
		mockDB.ExpectCommit()

		err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
			_, err := tx.Exec("DELETE FROM analysis_runs")
			return err
		})
		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()
		db := database.Wrap(mockDB.DB, logger.Nop())

		mockDB.ExpectBegin()
		mockDB.ExpectRollback()

		err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		mockDB.ExpectationsWereMet(t)
	})
}

func TestHealth(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	db := database.Wrap(mockDB.DB, logger.Nop())

	mockDB.Mock.ExpectPing()
	status := db.Health(context.Background())
	assert.Equal(t, "up", status["status"])
	assert.Contains(t, status, "open_connections")

	mockDB.Mock.ExpectPing().WillReturnError(assert.AnError)
	status = db.Health(context.Background())
	assert.Equal(t, "down", status["status"])
	assert.NotEmpty(t, status["error"])
}

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNil    bool
		wantStatus int
	}{
		{"not a pq error", assert.AnError, true, 0},
		{"unique violation", &pq.Error{Code: "23505"}, false, http.StatusConflict},
		{"wrapped check violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23514", Constraint: "rows_non_negative"}), false, http.StatusBadRequest},
		{"not null violation", &pq.Error{Code: "23502", Column: "id"}, false, http.StatusBadRequest},
		{"missing table", &pq.Error{Code: "42P01"}, false, http.StatusServiceUnavailable},
		{"unmapped code", &pq.Error{Code: "40001"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := database.MapPQError(tt.err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
		})
	}
}
