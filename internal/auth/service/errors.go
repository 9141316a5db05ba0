package service

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
)

// Kind groups service errors by who is at fault and how the caller should be
// answered.
type Kind int

const (
	KindCredential Kind = iota + 1
	KindToken
	KindSession
	KindAuthorization
	KindRateLimit
	KindInternal
)

// Error is the single error type returned by the service layer. Code and
// Message are safe to show to a caller; Err carries internal detail for logs.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by Code so a wrapped fault still compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Status maps e to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindCredential, KindToken, KindSession:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindRateLimit:
		if e.Code == authsdk.ErrorCodeRateLimitMisconfigure {
			return http.StatusInternalServerError
		}
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// APIError converts e to the wire error. Internal faults never expose detail.
func (e *Error) APIError() *authsdk.APIError {
	if e.Kind == KindInternal {
		return authsdk.ErrInternal
	}
	return authsdk.NewAPIError(e.Status(), e.Code, e.Message)
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// Credentials and account state
	ErrSignInFailed         = newError(KindCredential, authsdk.ErrorCodeSignInFailed, "sign-in failed")
	ErrSecondFactorRequired = newError(KindCredential, authsdk.ErrorCodeSecondFactorRequired, "second factor required")
	ErrUserNotFound         = newError(KindCredential, authsdk.ErrorCodeUserNotFound, "user not found")
	ErrAccountInactive      = newError(KindCredential, authsdk.ErrorCodeAccountInactive, "account is inactive")
	ErrAccountSuspended     = newError(KindCredential, authsdk.ErrorCodeAccountSuspended, "account is suspended")

	// Tokens
	ErrMissingAuthHeader = newError(KindToken, authsdk.ErrorCodeMissingAuthorization, "missing/invalid authorization header")
	ErrInvalidToken      = newError(KindToken, authsdk.ErrorCodeInvalidToken, "invalid or expired token")
	ErrTokenMissingID    = newError(KindToken, authsdk.ErrorCodeTokenMissingID, "token missing required identifier")
	ErrTokenRevoked      = newError(KindToken, authsdk.ErrorCodeTokenRevoked, "token has been revoked")
	ErrTokenVersionStale = newError(KindToken, authsdk.ErrorCodeTokenVersionStale, "token version is outdated")
	ErrRefreshReuse      = newError(KindToken, authsdk.ErrorCodeRefreshReuse, "refresh token reuse detected")
	ErrUnauthenticated   = newError(KindToken, authsdk.ErrorCodeAuthenticationRequired, "authentication required")

	// Sessions
	ErrSessionNotFound    = newError(KindSession, authsdk.ErrorCodeSessionNotFound, "session not found")
	ErrSessionInactive    = newError(KindSession, authsdk.ErrorCodeSessionInactive, "session is inactive")
	ErrSessionExpired     = newError(KindSession, authsdk.ErrorCodeSessionExpired, "session has expired")
	ErrSessionCompromised = newError(KindSession, authsdk.ErrorCodeSessionCompromised, "session has been compromised")

	// Authorization
	ErrAlreadyAuthenticated = newError(KindAuthorization, authsdk.ErrorCodeAlreadyAuthenticated, "already authenticated")
	ErrRoleDenied           = newError(KindAuthorization, authsdk.ErrorCodeRoleDenied, "insufficient role")
	ErrPermissionDenied     = newError(KindAuthorization, authsdk.ErrorCodePermissionDenied, "insufficient permission")

	// Rate limiting
	ErrRateLimited        = newError(KindRateLimit, authsdk.ErrorCodeRateLimited, "too many requests, please try again later")
	ErrRouteMisconfigured = newError(KindRateLimit, authsdk.ErrorCodeRateLimitMisconfigure, "rate limit is not configured for this route")

	ErrInternal = newError(KindInternal, authsdk.ErrorCodeInternal, "authentication service error")
)

// Internal wraps an unexpected fault. The caller sees only ErrInternal's
// message; err is kept for logging.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: ErrInternal.Message, Err: err}
}

// AsError returns err as a service error, treating anything unknown as an
// internal fault.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
