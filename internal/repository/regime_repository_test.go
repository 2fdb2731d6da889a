package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uni-adm/assignment-api/internal/models"
)

func newRegimeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func regimeRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "modality", "dedication", "active", "min_weekly_hours", "max_weekly_hours",
		"min_annual_hours", "max_annual_hours", "max_concurrent", "created_at", "updated_at",
	}).AddRow("regime-1", "VIRTUAL", "SIMPLE", true, 4, 12, 128, 384, 2, now, now)
}

func TestRegimeRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newRegimeMock(t)
	defer cleanup()
	repo := NewRegimeRepository(db)

	mock.ExpectQuery(`FROM workload_regimes\s+WHERE modality = \$1 AND dedication = \$2 AND active = TRUE`).
		WithArgs("VIRTUAL", "SIMPLE").
		WillReturnRows(regimeRows())

	regime, err := repo.FindActive(context.Background(), "VIRTUAL", "SIMPLE")
	require.NoError(t, err)
	assert.Equal(t, 12, regime.MaxWeeklyHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegimeRepositoryFindActiveMissing(t *testing.T) {
	db, mock, cleanup := newRegimeMock(t)
	defer cleanup()
	repo := NewRegimeRepository(db)

	mock.ExpectQuery(`FROM workload_regimes`).
		WithArgs("ONSITE", "EXCLUSIVE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActive(context.Background(), "ONSITE", "EXCLUSIVE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegimeRepositoryActivate(t *testing.T) {
	db, mock, cleanup := newRegimeMock(t)
	defer cleanup()
	repo := NewRegimeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE workload_regimes SET active = FALSE`).
		WithArgs("VIRTUAL", "SIMPLE", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO workload_regimes`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	regime := &models.WorkloadRegime{
		Modality:       "VIRTUAL",
		Dedication:     "SIMPLE",
		MinWeeklyHours: 4,
		MaxWeeklyHours: 12,
		MinAnnualHours: 128,
		MaxAnnualHours: 384,
		MaxConcurrent:  2,
	}
	require.NoError(t, repo.Activate(context.Background(), regime))
	assert.NotEmpty(t, regime.ID)
	assert.True(t, regime.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegimeRepositoryActivateRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRegimeMock(t)
	defer cleanup()
	repo := NewRegimeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE workload_regimes SET active = FALSE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO workload_regimes`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), &models.WorkloadRegime{Modality: "VIRTUAL", Dedication: "SIMPLE"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegimeRepositoryDeactivateMissing(t *testing.T) {
	db, mock, cleanup := newRegimeMock(t)
	defer cleanup()
	repo := NewRegimeRepository(db)

	mock.ExpectExec(`UPDATE workload_regimes SET active = FALSE, updated_at = \$2 WHERE id = \$1`).
		WithArgs("regime-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "regime-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
