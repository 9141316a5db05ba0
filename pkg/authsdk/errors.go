package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// Error codes carried in the "error" field of every failure response.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInternal       = "internal_error"
	ErrorCodeNotFound       = "not_found"

	// Credential and account
	ErrorCodeSignInFailed         = "sign_in_failed"
	ErrorCodeSecondFactorRequired = "second_factor_required"
	ErrorCodeAccountInactive      = "account_inactive"
	ErrorCodeAccountSuspended     = "account_suspended"
	ErrorCodeUserNotFound         = "user_not_found"

	// Token
	ErrorCodeMissingAuthorization = "missing_authorization"
	ErrorCodeInvalidToken         = "invalid_token"
	ErrorCodeTokenMissingID       = "token_missing_identifier"
	ErrorCodeTokenRevoked         = "token_revoked"
	ErrorCodeTokenVersionStale    = "token_version_stale"
	ErrorCodeRefreshReuse         = "refresh_token_reuse"

	// Session
	ErrorCodeSessionNotFound    = "session_not_found"
	ErrorCodeSessionInactive    = "session_inactive"
	ErrorCodeSessionExpired     = "session_expired"
	ErrorCodeSessionCompromised = "session_compromised"

	// Authorization
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeAlreadyAuthenticated   = "already_authenticated"
	ErrorCodeRoleDenied             = "role_denied"
	ErrorCodePermissionDenied       = "permission_denied"

	// Rate limiting
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeRateLimitMisconfigure = "rate_limit_misconfigured"
)

// APIError is the JSON error body returned by the service. It is written by
// the server and decoded by the SDK client.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine readable identifier, e.g. "token_revoked"
	Code string `json:"error"`

	// Message is the human readable reason
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *APIError by Code, so callers can write
// errors.Is(err, authsdk.ErrRateLimited).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WriteError writes this error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	if e.StatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+e.Message+`"`)
	}
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

var (
	// ErrInvalidRequest is returned when the body is malformed or missing
	// required fields.
	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "the request is malformed or missing required fields",
	}

	// ErrInternal hides every server side fault behind one message.
	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInternal,
		Message:    "authentication service error",
	}

	// ErrRateLimited is returned when a fixed window is exhausted.
	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "too many requests, please try again later",
	}

	// ErrSignInFailed is the single failure for an unknown email or a wrong
	// password.
	ErrSignInFailed = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeSignInFailed,
		Message:    "sign-in failed",
	}

	// ErrTokenRevoked is returned for blacklisted tokens.
	ErrTokenRevoked = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenRevoked,
		Message:    "token has been revoked",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
