/*
Package authsdk is a Go client for the gatekeeper authentication service, and
the home of the wire types and error body shared with the server.

# Usage

	client := authsdk.NewSDKClient("https://auth.example.com")

	tokens, err := client.SignIn(ctx, authsdk.SignInRequest{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if errors.Is(err, authsdk.ErrSignInFailed) {
		// wrong email or password, the service does not say which
	}

	me, err := client.Me(ctx, tokens.AccessToken)
	_, err = client.SignOut(ctx, tokens.AccessToken)

# Sessions

A Session keeps a token pair and rotates it through /v1/auth/refresh when the
access token is within RefreshThreshold of expiry:

	session, err := client.Authenticate(ctx, req)
	me, err := session.Me(ctx)
	err = session.SignOut(ctx)

Refresh tokens are single use. Presenting a rotated refresh token again is
treated as theft and the whole session family is revoked.

# Errors

Every failure is an *APIError with the HTTP status, a stable Code and a
Message. APIError implements Is by Code.
*/
package authsdk
