package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the gatekeeper authentication service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent on every request. The service derives the device id
	// from it, so keep it stable per installation.
	UserAgent string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: "gatekeeper-authsdk",
	}
}

// SignIn exchanges credentials for a token pair.
func (c *SDKClient) SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/sign-in", req, "")
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh rotates a refresh token. The presented token is retired and must
// not be used again.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// SignOut ends the session behind accessToken.
func (c *SDKClient) SignOut(ctx context.Context, accessToken string) (*SignOutResponse, error) {
	return c.signOut(ctx, "/v1/auth/sign-out", accessToken)
}

// SignOutEverywhere invalidates every token issued to the subject.
func (c *SDKClient) SignOutEverywhere(ctx context.Context, accessToken string) (*SignOutResponse, error) {
	return c.signOut(ctx, "/v1/auth/sign-out-all", accessToken)
}

func (c *SDKClient) signOut(ctx context.Context, path, accessToken string) (*SignOutResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var out SignOutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity and session behind accessToken.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/me", nil, accessToken)
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// ListAuditLogs returns audit entries for subjectID. Requires the admin role
// and the audit:read permission.
func (c *SDKClient) ListAuditLogs(ctx context.Context, accessToken, subjectID string) (*AuditLogList, error) {
	path := "/v1/admin/audit-logs?subject=" + url.QueryEscape(subjectID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var list AuditLogList
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}
