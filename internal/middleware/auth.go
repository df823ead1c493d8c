package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/model"
)

// RequireAuth resolves the request's session and stores the user in the
// request context. Requests without a valid session never reach the
// wrapped handler.
func RequireAuth(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return RequireRole(resolver, model.RoleAny)
}

// RequireRole is RequireAuth plus a role check on the resolved user.
func RequireRole(resolver *auth.Resolver, role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.RequireRole(r.Context(), r, role)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			ctx := auth.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
		msg = "not authenticated"
	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden
		msg = "insufficient privileges"
	case errors.Is(err, auth.ErrAccountGone):
		status = http.StatusNotFound
		msg = "account not found"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
