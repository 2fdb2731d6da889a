package models

import (
	"time"

	"github.com/uni-adm/assignment-api/pkg/interval"
)

// PositionType is the teaching role an assignment covers. It decides which
// share of the offering's hours the assignment credits to the teacher.
type PositionType string

const (
	PositionLecture   PositionType = "LECTURE"
	PositionPractical PositionType = "PRACTICAL"
	PositionCombined  PositionType = "COMBINED"
)

// PrimaryPositionTypes are the roles whose presence keeps a subject covered.
// A subject must retain at least one open assignment holding one of these.
var PrimaryPositionTypes = []PositionType{PositionLecture, PositionCombined}

// IsPrimary reports whether the position type counts toward subject coverage.
func (p PositionType) IsPrimary() bool {
	for _, primary := range PrimaryPositionTypes {
		if p == primary {
			return true
		}
	}
	return false
}

// Valid reports whether the position type is a known value.
func (p PositionType) Valid() bool {
	switch p {
	case PositionLecture, PositionPractical, PositionCombined:
		return true
	}
	return false
}

// Assignment appoints a person to a section for a time interval under a
// position type and a workload regime. Closed assignments are never deleted.
type Assignment struct {
	ID           string       `db:"id" json:"id"`
	PersonID     string       `db:"person_id" json:"person_id"`
	SectionID    string       `db:"section_id" json:"section_id"`
	PositionType PositionType `db:"position_type" json:"position_type"`
	StartDate    time.Time    `db:"start_date" json:"start_date"`
	EndDate      *time.Time   `db:"end_date" json:"end_date,omitempty"`

	// Snapshot of the contractual context at write time.
	RegimeID   string `db:"regime_id" json:"regime_id"`
	Modality   string `db:"modality" json:"modality"`
	Dedication string `db:"dedication" json:"dedication"`

	Note       *string   `db:"note" json:"note,omitempty"`
	DocumentID *string   `db:"document_id" json:"document_id,omitempty"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// IsOpen reports whether the assignment is active with no end date or an end
// date not yet reached. The comparison runs on whole days: an assignment
// ending today stays open through its final day.
func (a *Assignment) IsOpen(now time.Time) bool {
	if !a.Active {
		return false
	}
	return a.EndDate == nil || !a.EndDate.Before(interval.NormalizeDate(now))
}

// AssignmentDetail joins an assignment with its section chain for listings.
type AssignmentDetail struct {
	Assignment
	SectionName string `db:"section_name" json:"section_name"`
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	PersonName  string `db:"person_name" json:"person_name"`
}

// ExpiringAssignment is the scanner's projection of an assignment whose end
// date falls inside the warning window.
type ExpiringAssignment struct {
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	PersonID     string    `db:"person_id" json:"person_id"`
	PersonName   string    `db:"person_name" json:"person_name"`
	SectionID    string    `db:"section_id" json:"section_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	CareerID     string    `db:"career_id" json:"career_id"`
	CareerName   string    `db:"career_name" json:"career_name"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
}
