package domain

import "time"

// TokenType distinguishes access from refresh entries in the blacklist.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// RevocationReason records why a token was blacklisted or revoked.
type RevocationReason string

const (
	ReasonLogout     RevocationReason = "LOGOUT"
	ReasonCompromise RevocationReason = "COMPROMISE"
	ReasonRotation   RevocationReason = "ROTATION"
)

// BlacklistKey identifies a blacklisted token by JTI.
type BlacklistKey struct {
	TokenID string
}

// BlacklistEntry makes one token unusable until ExpiresAt, after which the
// token would fail expiry verification anyway and the row may be collected.
type BlacklistEntry struct {
	TokenID   string
	SubjectID string
	TokenType TokenType
	Reason    RevocationReason
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Key returns the composite key of e.
func (e BlacklistEntry) Key() BlacklistKey { return BlacklistKey{TokenID: e.TokenID} }
