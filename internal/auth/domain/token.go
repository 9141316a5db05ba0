package domain

import "time"

// TokenPair is what sign-in and refresh hand back to the caller.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	SubjectID    string
	// ExpiresIn is the access token lifetime.
	ExpiresIn time.Duration
}

// RefreshToken is the stored record of an issued refresh token. The token
// itself is never stored; ID is its JTI.
type RefreshToken struct {
	ID             string
	SubjectID      string
	FamilyID       string
	SessionTokenID string
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RevokedReason  RevocationReason
	CreatedAt      time.Time
}
