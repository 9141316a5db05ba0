package domain

import "time"

// SessionKey identifies a session by the JTI of its access token.
type SessionKey struct {
	TokenID string
}

// FamilyKey identifies the lineage of sessions created by rotation from one
// sign-in.
type FamilyKey struct {
	FamilyID string
}

// Session is one generation of a session family. Each refresh rotation
// retires the current row and creates the next generation.
type Session struct {
	TokenID   string
	SubjectID string
	FamilyID  string
	DeviceID  string
	// Generation starts at zero on sign-in and increases by one per rotation.
	Generation int

	RefreshTokenID   string
	RefreshExpiresAt time.Time

	IsActive      bool
	IsCompromised bool

	// ExpiresAt is the access token expiry.
	ExpiresAt      time.Time
	LastActivityAt time.Time
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

// Key returns the composite key of s.
func (s Session) Key() SessionKey { return SessionKey{TokenID: s.TokenID} }

// Family returns the family key of s.
func (s Session) Family() FamilyKey { return FamilyKey{FamilyID: s.FamilyID} }
