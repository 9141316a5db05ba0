package httpx

import (
	"net"
	"net/http"
	"strings"
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the peer address of the connection. Proxy headers
// are ignored because a client can set them freely.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ForwardedIPKeyExtractor trusts X-Forwarded-For and X-Real-IP. Only use it
// behind a reverse proxy that overwrites those headers.
func ForwardedIPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return IPKeyExtractor(r)
}

// ClientIPExtractor picks the extractor matching the deployment.
func ClientIPExtractor(trustProxyHeaders bool) KeyExtractor {
	if trustProxyHeaders {
		return ForwardedIPKeyExtractor
	}
	return IPKeyExtractor
}
