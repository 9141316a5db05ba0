package domain

import "time"

// Identity is the authenticated subject as seen by downstream handlers.
type Identity struct {
	ID         string
	ExternalID string
	Email      string
	IsActive   bool
	IsVerified bool
	Roles      []string
}

// SessionDescriptor is the session that authenticated the request.
type SessionDescriptor struct {
	TokenID          string
	FamilyID         string
	DeviceID         string
	Generation       int
	RefreshTokenID   string
	RefreshExpiresAt time.Time
}

// Principal is built once per request by the authentication guard and is
// never mutated afterwards.
type Principal struct {
	Identity Identity
	Session  SessionDescriptor

	// TokenExpiresAt is the exp claim of the presented access token.
	TokenExpiresAt time.Time
}
