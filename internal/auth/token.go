package auth

import (
	"net/http"
	"strings"
)

// SessionCookieName is the cookie the mobile client stores its session
// token under. The same token may arrive as an Authorization bearer header
// instead; the cookie wins when both are present.
const SessionCookieName = "session_token"

const bearerPrefix = "Bearer "

// TokenFromRequest extracts the session token from the request, checking
// the session cookie first and then the Authorization header. The bearer
// scheme is matched case-insensitively. Returns "" when no token is found.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}

	return ""
}
