// Package handler implements the JSON API endpoints.
package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// currentUser returns the authenticated user placed in the context by
// the auth middleware. The middleware runs on every gated route, so a
// missing user means a wiring bug rather than a client error.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	return u, true
}

// requireRoles is the handler-side gate for routes open to more than one
// role. Single-role routes are gated by middleware instead.
func requireRoles(w http.ResponseWriter, r *http.Request, roles ...model.Role) (*model.User, bool) {
	u, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	if !slices.Contains(roles, u.Role) {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return nil, false
	}
	return u, true
}

// generatePassword returns a random initial password for accounts
// created on someone's behalf. The owner is forced to change it on
// first login.
func generatePassword() string {
	b := make([]byte, 6)
	rand.Read(b)
	return hex.EncodeToString(b)
}
