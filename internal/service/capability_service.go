package service

import "github.com/uni-adm/assignment-api/internal/models"

// roleCapabilities maps each role to the capabilities it grants. Granting
// flows through capabilities only; handlers never test roles directly.
var roleCapabilities = map[models.UserRole][]models.Capability{
	models.RoleAdmin: {
		models.CapManageAssignments,
		models.CapViewAssignments,
		models.CapManageRegimes,
		models.CapViewWorkload,
		models.CapManageNotifications,
	},
	models.RoleCoordinator: {
		models.CapViewAssignments,
		models.CapViewWorkload,
		models.CapManageNotifications,
	},
	models.RoleTeacher: {
		models.CapViewAssignments,
		models.CapManageNotifications,
	},
}

// CapabilityService resolves what a principal is allowed to do from their
// role.
type CapabilityService struct{}

// NewCapabilityService creates a service instance.
func NewCapabilityService() *CapabilityService {
	return &CapabilityService{}
}

// Has reports whether the role grants the capability.
func (s *CapabilityService) Has(role models.UserRole, capability models.Capability) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// CapabilitiesFor returns the full grant set of a role.
func (s *CapabilityService) CapabilitiesFor(role models.UserRole) []models.Capability {
	granted := roleCapabilities[role]
	out := make([]models.Capability, len(granted))
	copy(out, granted)
	return out
}
