package jwtx

import "strings"

const bearerPrefix = "Bearer "

// ExtractBearerToken returns the credential from an Authorization header
// value. The scheme match is literal: "bearer x" is not accepted.
func ExtractBearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
