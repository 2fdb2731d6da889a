package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uni-adm/assignment-api/internal/models"
)

// RegimeRepository persists workload regimes. At most one regime is active
// per (modality, dedication) pair; Activate enforces that transactionally.
type RegimeRepository struct {
	db *sqlx.DB
}

// NewRegimeRepository constructs the repository.
func NewRegimeRepository(db *sqlx.DB) *RegimeRepository {
	return &RegimeRepository{db: db}
}

// FindActive returns the single active regime for the pair, or
// sql.ErrNoRows when none is active.
func (r *RegimeRepository) FindActive(ctx context.Context, modality, dedication string) (*models.WorkloadRegime, error) {
	const query = `
SELECT id, modality, dedication, active, min_weekly_hours, max_weekly_hours,
       min_annual_hours, max_annual_hours, max_concurrent, created_at, updated_at
FROM workload_regimes
WHERE modality = $1 AND dedication = $2 AND active = TRUE`
	var regime models.WorkloadRegime
	if err := r.db.GetContext(ctx, &regime, query, modality, dedication); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find active regime: %w", err)
	}
	return &regime, nil
}

// List returns every regime, active first.
func (r *RegimeRepository) List(ctx context.Context) ([]models.WorkloadRegime, error) {
	const query = `
SELECT id, modality, dedication, active, min_weekly_hours, max_weekly_hours,
       min_annual_hours, max_annual_hours, max_concurrent, created_at, updated_at
FROM workload_regimes
ORDER BY active DESC, modality ASC, dedication ASC`
	var regimes []models.WorkloadRegime
	if err := r.db.SelectContext(ctx, &regimes, query); err != nil {
		return nil, fmt.Errorf("list regimes: %w", err)
	}
	return regimes, nil
}

// Activate inserts the regime as active, deactivating any previously active
// regime for the same pair within one transaction.
func (r *RegimeRepository) Activate(ctx context.Context, regime *models.WorkloadRegime) error {
	if regime.ID == "" {
		regime.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	regime.Active = true
	regime.CreatedAt = now
	regime.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin regime activation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE workload_regimes SET active = FALSE, updated_at = $3 WHERE modality = $1 AND dedication = $2 AND active = TRUE`,
		regime.Modality, regime.Dedication, now); err != nil {
		return fmt.Errorf("deactivate prior regimes: %w", err)
	}

	if _, err = tx.NamedExecContext(ctx, `
INSERT INTO workload_regimes (id, modality, dedication, active, min_weekly_hours, max_weekly_hours,
        min_annual_hours, max_annual_hours, max_concurrent, created_at, updated_at)
VALUES (:id, :modality, :dedication, :active, :min_weekly_hours, :max_weekly_hours,
        :min_annual_hours, :max_annual_hours, :max_concurrent, :created_at, :updated_at)`, regime); err != nil {
		return fmt.Errorf("insert regime: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit regime activation: %w", err)
	}
	return nil
}

// Deactivate disables a regime without replacing it.
func (r *RegimeRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE workload_regimes SET active = FALSE, updated_at = $2 WHERE id = $1 AND active = TRUE`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate regime: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated regime rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
