package models

import "time"

// Dedication catalog values recognised by regime rules.
const (
	DedicationSimple        = "SIMPLE"
	DedicationSemiExclusive = "SEMIEXCLUSIVE"
	DedicationExclusive     = "EXCLUSIVE"
)

// WorkloadRegime bounds the teaching load for one (modality, dedication)
// pair. At most one regime is active per pair; activating a new one
// deactivates the previous.
type WorkloadRegime struct {
	ID         string `db:"id" json:"id"`
	Modality   string `db:"modality" json:"modality"`
	Dedication string `db:"dedication" json:"dedication"`
	Active     bool   `db:"active" json:"active"`

	MinWeeklyHours int `db:"min_weekly_hours" json:"min_weekly_hours"`
	MaxWeeklyHours int `db:"max_weekly_hours" json:"max_weekly_hours"`
	MinAnnualHours int `db:"min_annual_hours" json:"min_annual_hours"`
	MaxAnnualHours int `db:"max_annual_hours" json:"max_annual_hours"`
	MaxConcurrent  int `db:"max_concurrent" json:"max_concurrent"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MaxConcurrentFor returns the assignment cap a dedication allows.
func MaxConcurrentFor(dedication string) int {
	if dedication == DedicationSimple {
		return 2
	}
	return 3
}
