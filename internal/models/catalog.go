package models

import "time"

// Career groups study plans under one degree program.
type Career struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudyPlan is one versioned curriculum of a career.
type StudyPlan struct {
	ID       string `db:"id" json:"id"`
	CareerID string `db:"career_id" json:"career_id"`
	Name     string `db:"name" json:"name"`
	Current  bool   `db:"current" json:"current"`
}

// SubjectOffering places a subject inside a study plan and fixes its weekly
// contact hours. Total hours must equal theory + practice.
type SubjectOffering struct {
	ID            string `db:"id" json:"id"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	PlanID        string `db:"plan_id" json:"plan_id"`
	TheoryHours   int    `db:"theory_hours" json:"theory_hours"`
	PracticeHours int    `db:"practice_hours" json:"practice_hours"`
	TotalHours    int    `db:"total_hours" json:"total_hours"`
	Active        bool   `db:"active" json:"active"`
}

// SectionShift is the time-of-day band a section runs in.
type SectionShift string

const (
	ShiftMorning SectionShift = "MORNING"
	ShiftEvening SectionShift = "EVENING"
)

// Section is a teaching group instance of a subject offering.
type Section struct {
	ID         string       `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	Shift      SectionShift `db:"shift" json:"shift"`
	Active     bool         `db:"active" json:"active"`
	OfferingID string       `db:"offering_id" json:"offering_id"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// SectionChain is the resolved ownership chain of one section, as consumed
// by validation and the periodic scans.
type SectionChain struct {
	SectionID     string `db:"section_id" json:"section_id"`
	SectionName   string `db:"section_name" json:"section_name"`
	OfferingID    string `db:"offering_id" json:"offering_id"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	TheoryHours   int    `db:"theory_hours" json:"theory_hours"`
	PracticeHours int    `db:"practice_hours" json:"practice_hours"`
	TotalHours    int    `db:"total_hours" json:"total_hours"`
	PlanID        string `db:"plan_id" json:"plan_id"`
	CareerID      string `db:"career_id" json:"career_id"`
	CareerName    string `db:"career_name" json:"career_name"`
}

// UncoveredSubject is a subject on a current plan with no open assignment.
type UncoveredSubject struct {
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	CareerID    string `db:"career_id" json:"career_id"`
	CareerName  string `db:"career_name" json:"career_name"`
}
