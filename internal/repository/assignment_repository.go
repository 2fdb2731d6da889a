package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/pkg/interval"
)

// assignmentColumns is the shared projection for assignment rows.
const assignmentColumns = `a.id, a.person_id, a.section_id, a.position_type, a.start_date, a.end_date,
       a.regime_id, a.modality, a.dedication, a.note, a.document_id, a.created_by, a.active,
       a.created_at, a.updated_at`

// AssignmentRepository persists teaching assignments. Closed assignments are
// kept forever; only the active flag and end date change.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID returns one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments a WHERE a.id = $1`, assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// ListByPerson returns all assignments of a person with section context,
// newest first.
func (r *AssignmentRepository) ListByPerson(ctx context.Context, personID string) ([]models.AssignmentDetail, error) {
	query := fmt.Sprintf(`
SELECT %s, s.name AS section_name, o.subject_id, o.subject_name, p.full_name AS person_name
FROM assignments a
JOIN sections s ON s.id = a.section_id
JOIN subject_offerings o ON o.id = s.offering_id
JOIN people p ON p.id = a.person_id
WHERE a.person_id = $1
ORDER BY a.start_date DESC, a.created_at DESC`, assignmentColumns)
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, personID); err != nil {
		return nil, fmt.Errorf("list assignments by person: %w", err)
	}
	return assignments, nil
}

// ListBySection returns all of the person's assignments in one section,
// closed ones included, optionally excluding one assignment id (the instance
// being updated). Overlap checks run against the full history.
func (r *AssignmentRepository) ListBySection(ctx context.Context, personID, sectionID, excludeID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`
SELECT %s FROM assignments a
WHERE a.person_id = $1 AND a.section_id = $2 AND a.id <> $3`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, personID, sectionID, excludeID); err != nil {
		return nil, fmt.Errorf("list assignments by section: %w", err)
	}
	return assignments, nil
}

// ListByPosition returns all of the person's assignments holding the given
// position type, closed ones included, optionally excluding one assignment
// id.
func (r *AssignmentRepository) ListByPosition(ctx context.Context, personID string, position models.PositionType, excludeID string) ([]models.Assignment, error) {
	query := fmt.Sprintf(`
SELECT %s FROM assignments a
WHERE a.person_id = $1 AND a.position_type = $2 AND a.id <> $3`, assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, personID, position, excludeID); err != nil {
		return nil, fmt.Errorf("list assignments by position: %w", err)
	}
	return assignments, nil
}

// OpenAssignmentHours is one open assignment with the hours its position
// credits, as consumed by the workload aggregator.
type OpenAssignmentHours struct {
	AssignmentID  string              `db:"assignment_id"`
	PositionType  models.PositionType `db:"position_type"`
	TheoryHours   int                 `db:"theory_hours"`
	PracticeHours int                 `db:"practice_hours"`
	TotalHours    int                 `db:"total_hours"`
}

// ListOpenWithHours returns the person's open assignments (active, end date
// null or not yet reached) joined with the offering's contact hours. The end
// day itself still counts as open.
func (r *AssignmentRepository) ListOpenWithHours(ctx context.Context, personID string, now time.Time) ([]OpenAssignmentHours, error) {
	const query = `
SELECT a.id AS assignment_id, a.position_type, o.theory_hours, o.practice_hours, o.total_hours
FROM assignments a
JOIN sections s ON s.id = a.section_id
JOIN subject_offerings o ON o.id = s.offering_id
WHERE a.person_id = $1 AND a.active = TRUE AND (a.end_date IS NULL OR a.end_date >= $2)`
	var rows []OpenAssignmentHours
	if err := r.db.SelectContext(ctx, &rows, query, personID, interval.NormalizeDate(now)); err != nil {
		return nil, fmt.Errorf("list open assignments with hours: %w", err)
	}
	return rows, nil
}

// CountOpenByPerson returns the number of open assignments a person holds.
func (r *AssignmentRepository) CountOpenByPerson(ctx context.Context, personID string, now time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM assignments
WHERE person_id = $1 AND active = TRUE AND (end_date IS NULL OR end_date >= $2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, personID, interval.NormalizeDate(now)); err != nil {
		return 0, fmt.Errorf("count open assignments: %w", err)
	}
	return count, nil
}

// CountOpenPrimaryBySubject counts open assignments holding a primary
// position type for the subject owning the given section, excluding one
// assignment id. Used by the close guard.
func (r *AssignmentRepository) CountOpenPrimaryBySubject(ctx context.Context, sectionID, excludeID string, now time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM assignments a
JOIN sections s ON s.id = a.section_id
JOIN subject_offerings o ON o.id = s.offering_id
WHERE o.subject_id = (
        SELECT o2.subject_id FROM sections s2
        JOIN subject_offerings o2 ON o2.id = s2.offering_id
        WHERE s2.id = $1
      )
  AND a.active = TRUE
  AND (a.end_date IS NULL OR a.end_date >= $3)
  AND a.position_type = ANY($4)
  AND a.id <> $2`
	primaries := make([]string, 0, len(models.PrimaryPositionTypes))
	for _, p := range models.PrimaryPositionTypes {
		primaries = append(primaries, string(p))
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, sectionID, excludeID, interval.NormalizeDate(now), pq.Array(primaries)); err != nil {
		return 0, fmt.Errorf("count open primary assignments: %w", err)
	}
	return count, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	assignment.Active = true
	const query = `
INSERT INTO assignments (id, person_id, section_id, position_type, start_date, end_date,
        regime_id, modality, dedication, note, document_id, created_by, active, created_at, updated_at)
VALUES (:id, :person_id, :section_id, :position_type, :start_date, :end_date,
        :regime_id, :modality, :dedication, :note, :document_id, :created_by, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE assignments
SET section_id = :section_id, position_type = :position_type, start_date = :start_date,
    end_date = :end_date, regime_id = :regime_id, modality = :modality, dedication = :dedication,
    note = :note, document_id = :document_id, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Close ends an assignment: end date set, active cleared, in one statement
// guarded on the row still being open.
func (r *AssignmentRepository) Close(ctx context.Context, id string, endDate time.Time) error {
	const query = `
UPDATE assignments SET end_date = $2, active = FALSE, updated_at = $3
WHERE id = $1 AND active = TRUE`
	result, err := r.db.ExecContext(ctx, query, id, endDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("close assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check closed assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListExpiringWithin returns open assignments whose end date falls inside
// [now, now+window], joined with their career chain for coordinator routing.
func (r *AssignmentRepository) ListExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]models.ExpiringAssignment, error) {
	const query = `
SELECT a.id AS assignment_id, a.person_id, p.full_name AS person_name, a.section_id,
       o.subject_name, c.id AS career_id, c.name AS career_name, a.end_date
FROM assignments a
JOIN people p ON p.id = a.person_id
JOIN sections s ON s.id = a.section_id
JOIN subject_offerings o ON o.id = s.offering_id
JOIN study_plans sp ON sp.id = o.plan_id
JOIN careers c ON c.id = sp.career_id
WHERE a.active = TRUE AND a.end_date IS NOT NULL AND a.end_date >= $1 AND a.end_date <= $2
ORDER BY a.end_date ASC`
	day := interval.NormalizeDate(now)
	var rows []models.ExpiringAssignment
	if err := r.db.SelectContext(ctx, &rows, query, day, day.Add(window)); err != nil {
		return nil, fmt.Errorf("list expiring assignments: %w", err)
	}
	return rows, nil
}
