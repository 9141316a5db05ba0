package domain

import "time"

// Role groups named permissions. Subjects hold any number of roles.
type Role struct {
	ID          string
	Name        string
	Permissions []string
	CreatedAt   time.Time
}

// Well-known role and permission names.
const (
	RoleAdmin           = "admin"
	PermissionAuditRead = "audit:read"
)
