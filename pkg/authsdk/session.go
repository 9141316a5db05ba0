package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
)

// ErrSessionClosed is returned after SignOut.
var ErrSessionClosed = errors.New("authsdk: session closed")

// Session holds a token pair and rotates it before the access token expires.
// Safe for concurrent use.
type Session struct {
	client *SDKClient

	// RefreshThreshold is how close to expiry the access token may get before
	// a rotation is triggered. Zero uses five minutes.
	RefreshThreshold time.Duration

	mu     sync.Mutex
	tokens TokenResponse
	closed bool
	now    func() time.Time
}

// Authenticate signs in and wraps the result in a Session.
func (c *SDKClient) Authenticate(ctx context.Context, req SignInRequest) (*Session, error) {
	tokens, err := c.SignIn(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromTokens(*tokens), nil
}

// NewSessionFromTokens creates a session from an existing token pair.
func (c *SDKClient) NewSessionFromTokens(tokens TokenResponse) *Session {
	return &Session{client: c, tokens: tokens, now: time.Now}
}

// SubjectID returns the authenticated subject.
func (s *Session) SubjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.SubjectID
}

// AccessToken returns a usable access token, rotating the pair first if the
// current one is about to expire.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	if !jwtx.IsExpiringSoon(s.tokens.AccessToken, s.RefreshThreshold, s.now()) {
		return s.tokens.AccessToken, nil
	}

	tokens, err := s.client.Refresh(ctx, s.tokens.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.tokens = *tokens
	return s.tokens.AccessToken, nil
}

// Me fetches the current identity.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Me(ctx, token)
}

// SignOut ends the session server side and closes it locally.
func (s *Session) SignOut(ctx context.Context) error {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return err
	}
	if _, err := s.client.SignOut(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
