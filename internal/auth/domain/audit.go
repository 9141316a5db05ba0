package domain

import "time"

// AuditAction names what an audit record is about.
type AuditAction string

const (
	AuditLogin             AuditAction = "LOGIN"
	AuditLogout            AuditAction = "LOGOUT"
	AuditLogoutAll         AuditAction = "LOGOUT_ALL"
	AuditRefresh           AuditAction = "REFRESH"
	AuditRefreshReuse      AuditAction = "REFRESH_REUSE"
	AuditSignOutIncomplete AuditAction = "LOGOUT_INCOMPLETE"
)

// AuditLog is an append-only record of a security relevant event.
type AuditLog struct {
	ID        string
	SubjectID string
	Action    AuditAction
	Success   bool
	FamilyID  string
	DeviceID  string
	IPAddress string
	Detail    string
	CreatedAt time.Time
}
