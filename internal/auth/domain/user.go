package domain

import "time"

// User is a subject that can sign in.
type User struct {
	ID string
	// ExternalID links the subject to an upstream identity system.
	ExternalID   string
	Email        string
	PasswordHash string // bcrypt encoded

	IsActive    bool
	IsVerified  bool
	IsSuspended bool

	// TokenVersion is bumped to invalidate every token issued before the bump.
	TokenVersion int64

	// MFASecret is a base32 TOTP secret. Nil means no second factor.
	MFASecret *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSecondFactor reports whether sign-in must present a TOTP code.
func (u User) HasSecondFactor() bool {
	return u.MFASecret != nil && *u.MFASecret != ""
}
