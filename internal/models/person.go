package models

import "time"

// Person is the root identity record. Role-specific data lives in the
// optional owned profiles; a person may hold both at once.
type Person struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	TeacherProfile     *TeacherProfile     `db:"-" json:"teacher_profile,omitempty"`
	CoordinatorProfile *CoordinatorProfile `db:"-" json:"coordinator_profile,omitempty"`
}

// TeacherProfile carries the contractual attributes a person needs to be
// assignable to a section.
type TeacherProfile struct {
	PersonID   string `db:"person_id" json:"person_id"`
	Modality   string `db:"modality" json:"modality"`
	Dedication string `db:"dedication" json:"dedication"`
	Active     bool   `db:"active" json:"active"`
}

// CoordinatorProfile marks a person as a career coordinator. The careers
// actually coordinated are tracked per period in Coordination rows.
type CoordinatorProfile struct {
	PersonID      string         `db:"person_id" json:"person_id"`
	Active        bool           `db:"active" json:"active"`
	Coordinations []Coordination `db:"-" json:"coordinations,omitempty"`
}

// Coordination records one coordinator-career validity period.
type Coordination struct {
	ID        string     `db:"id" json:"id"`
	PersonID  string     `db:"person_id" json:"person_id"`
	CareerID  string     `db:"career_id" json:"career_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsTeacher reports whether the person has an active teacher profile.
func (p *Person) IsTeacher() bool {
	return p.TeacherProfile != nil && p.TeacherProfile.Active
}

// IsCoordinator reports whether the person has an active coordinator profile.
func (p *Person) IsCoordinator() bool {
	return p.CoordinatorProfile != nil && p.CoordinatorProfile.Active
}
