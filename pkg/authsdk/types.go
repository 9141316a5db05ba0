package authsdk

import "time"

// ============================================================================
// Sign-in / Refresh
// ============================================================================

// SignInRequest is the body of POST /v1/auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`

	// OTP is the current TOTP code. Only required for accounts with a second
	// factor enrolled.
	OTP string `json:"otp,omitempty" example:"123456"`
}

// RefreshRequest is the body of POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by sign-in and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SubjectID    string `json:"subjectId" example:"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"`
	TokenType    string `json:"tokenType" example:"Bearer"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn" example:"900"`
}

// SignOutResponse is returned by sign-out endpoints.
type SignOutResponse struct {
	Success bool `json:"success"`
}

// ============================================================================
// Identity
// ============================================================================

// IdentityInfo describes the authenticated subject.
type IdentityInfo struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"externalId,omitempty"`
	Email      string   `json:"email"`
	IsActive   bool     `json:"isActive"`
	IsVerified bool     `json:"isVerified"`
	Roles      []string `json:"roles"`
}

// SessionInfo describes the session backing the current access token.
type SessionInfo struct {
	TokenID    string `json:"tokenId"`
	FamilyID   string `json:"familyId"`
	DeviceID   string `json:"deviceId"`
	Generation int    `json:"generation"`
}

// MeResponse is returned by GET /v1/auth/me.
type MeResponse struct {
	Identity IdentityInfo `json:"identity"`
	Session  SessionInfo  `json:"session"`
}

// ============================================================================
// Audit
// ============================================================================

// AuditLogEntry is a single audit record.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId,omitempty"`
	Action    string    `json:"action" example:"LOGIN"`
	Success   bool      `json:"success"`
	FamilyID  string    `json:"familyId,omitempty"`
	DeviceID  string    `json:"deviceId,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLogList is returned by GET /v1/admin/audit-logs.
type AuditLogList struct {
	Entries []AuditLogEntry `json:"entries"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the session store connection status
	Database string `json:"database"`

	// RateLimiter indicates the rate window backend status
	RateLimiter string `json:"rateLimiter"`
}
