package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised at the boundary. Tokens are
// issued by the surrounding user-management system; this service only
// validates them and resolves capabilities.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleCoordinator UserRole = "COORDINATOR"
	RoleTeacher     UserRole = "TEACHER"
)

// Capability is a granted permission resolved from a principal's role.
type Capability string

const (
	CapManageAssignments   Capability = "assignments:manage"
	CapViewAssignments     Capability = "assignments:view"
	CapManageRegimes       Capability = "regimes:manage"
	CapViewWorkload        Capability = "workload:view"
	CapManageNotifications Capability = "notifications:self"
)

// JWTClaims is the access-token payload.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination describes standard pagination metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
