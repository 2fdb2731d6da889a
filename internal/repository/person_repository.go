package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uni-adm/assignment-api/internal/models"
	"github.com/uni-adm/assignment-api/pkg/interval"
)

// PersonRepository reads people and their role profiles.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// FindByID loads a person with both profiles attached when present.
// Returns sql.ErrNoRows when the person does not exist.
func (r *PersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	const personQuery = `
SELECT id, email, full_name, active, created_at, updated_at
FROM people
WHERE id = $1`
	var person models.Person
	if err := r.db.GetContext(ctx, &person, personQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find person: %w", err)
	}

	const teacherQuery = `
SELECT person_id, modality, dedication, active
FROM teacher_profiles
WHERE person_id = $1`
	var teacher models.TeacherProfile
	if err := r.db.GetContext(ctx, &teacher, teacherQuery, id); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("find teacher profile: %w", err)
		}
	} else {
		person.TeacherProfile = &teacher
	}

	const coordinatorQuery = `
SELECT person_id, active
FROM coordinator_profiles
WHERE person_id = $1`
	var coordinator models.CoordinatorProfile
	if err := r.db.GetContext(ctx, &coordinator, coordinatorQuery, id); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("find coordinator profile: %w", err)
		}
	} else {
		person.CoordinatorProfile = &coordinator
	}

	return &person, nil
}

// ListActiveCoordinatorsByCareer returns person IDs coordinating a career
// as of the given instant. The coordination period uses inclusive bounds
// and an open end means ongoing.
func (r *PersonRepository) ListActiveCoordinatorsByCareer(ctx context.Context, careerID string, now time.Time) ([]string, error) {
	const query = `
SELECT DISTINCT c.person_id
FROM coordinations c
JOIN coordinator_profiles cp ON cp.person_id = c.person_id
WHERE c.career_id = $1
  AND c.active = TRUE
  AND cp.active = TRUE
  AND c.start_date <= $2
  AND (c.end_date IS NULL OR c.end_date >= $2)`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, careerID, interval.NormalizeDate(now)); err != nil {
		return nil, fmt.Errorf("list career coordinators: %w", err)
	}
	return ids, nil
}

// ListCoordinations returns the coordination periods of one coordinator,
// most recent first.
func (r *PersonRepository) ListCoordinations(ctx context.Context, personID string) ([]models.Coordination, error) {
	const query = `
SELECT id, person_id, career_id, start_date, end_date, active, created_at
FROM coordinations
WHERE person_id = $1
ORDER BY start_date DESC`
	var coordinations []models.Coordination
	if err := r.db.SelectContext(ctx, &coordinations, query, personID); err != nil {
		return nil, fmt.Errorf("list coordinations: %w", err)
	}
	return coordinations, nil
}
