package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/pkg/interval"
)

// CatalogRepository resolves the section ownership chain (section ->
// offering -> plan -> career) and coverage queries over it.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ResolveChain loads the full ownership chain of one section. Returns
// sql.ErrNoRows when the section does not exist or is inactive.
func (r *CatalogRepository) ResolveChain(ctx context.Context, sectionID string) (*models.SectionChain, error) {
	const query = `
SELECT s.id AS section_id, s.name AS section_name,
       so.id AS offering_id, so.subject_id, so.subject_name,
       so.theory_hours, so.practice_hours, so.total_hours,
       sp.id AS plan_id, c.id AS career_id, c.name AS career_name
FROM sections s
JOIN subject_offerings so ON so.id = s.offering_id
JOIN study_plans sp ON sp.id = so.plan_id
JOIN careers c ON c.id = sp.career_id
WHERE s.id = $1 AND s.active = TRUE`
	var chain models.SectionChain
	if err := r.db.GetContext(ctx, &chain, query, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("resolve section chain: %w", err)
	}
	return &chain, nil
}

// ListUncoveredSubjects returns subjects on current plans whose sections
// have no open assignment of a primary position type as of now.
func (r *CatalogRepository) ListUncoveredSubjects(ctx context.Context, now time.Time) ([]models.UncoveredSubject, error) {
	const query = `
SELECT DISTINCT so.subject_id, so.subject_name, c.id AS career_id, c.name AS career_name
FROM subject_offerings so
JOIN study_plans sp ON sp.id = so.plan_id AND sp.current = TRUE
JOIN careers c ON c.id = sp.career_id AND c.active = TRUE
WHERE so.active = TRUE
  AND NOT EXISTS (
      SELECT 1
      FROM assignments a
      JOIN sections s ON s.id = a.section_id
      WHERE s.offering_id = so.id
        AND a.active = TRUE
        AND a.position_type = ANY($1)
        AND a.start_date <= $2
        AND (a.end_date IS NULL OR a.end_date >= $2)
  )
ORDER BY career_name ASC, subject_name ASC`
	var subjects []models.UncoveredSubject
	primaries := make([]string, 0, len(models.PrimaryPositionTypes))
	for _, pt := range models.PrimaryPositionTypes {
		primaries = append(primaries, string(pt))
	}
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(primaries), interval.NormalizeDate(now)); err != nil {
		return nil, fmt.Errorf("list uncovered subjects: %w", err)
	}
	return subjects, nil
}

// ListCareersBySubject returns the ids of the active careers whose current
// study plans include the subject.
func (r *CatalogRepository) ListCareersBySubject(ctx context.Context, subjectID string) ([]string, error) {
	const query = `
SELECT DISTINCT c.id
FROM subject_offerings so
JOIN study_plans sp ON sp.id = so.plan_id AND sp.current = TRUE
JOIN careers c ON c.id = sp.career_id AND c.active = TRUE
WHERE so.subject_id = $1 AND so.active = TRUE`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectID); err != nil {
		return nil, fmt.Errorf("list careers by subject: %w", err)
	}
	return ids, nil
}

// ListSectionsByOffering returns the active sections of one offering.
func (r *CatalogRepository) ListSectionsByOffering(ctx context.Context, offeringID string) ([]models.Section, error) {
	const query = `
SELECT id, name, shift, active, offering_id, created_at
FROM sections
WHERE offering_id = $1 AND active = TRUE
ORDER BY name ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, offeringID); err != nil {
		return nil, fmt.Errorf("list sections by offering: %w", err)
	}
	return sections, nil
}
