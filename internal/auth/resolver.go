package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

// SessionStore is the slice of the session store the resolver needs.
type SessionStore interface {
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// UserStore is the slice of the user store the resolver needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Resolver turns an inbound request into an authenticated user, or one of
// the auth error classes. It holds no state of its own: every call
// re-validates against the session store, so logout takes effect on the
// very next request.
type Resolver struct {
	sessions SessionStore
	users    UserStore
	logger   *slog.Logger
}

func NewResolver(sessions SessionStore, users UserStore, logger *slog.Logger) *Resolver {
	return &Resolver{sessions: sessions, users: users, logger: logger}
}

// Resolve extracts the bearer token (cookie first, then header), looks up
// the session, enforces expiry, and resolves the owning user. A session
// found expired is deleted on the spot; the deletion is best-effort and
// never masks the rejection.
func (rs *Resolver) Resolve(ctx context.Context, r *http.Request) (*model.User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, fmt.Errorf("%w: no credential supplied", ErrUnauthenticated)
	}

	sess, err := rs.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("look up session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: invalid credential", ErrUnauthenticated)
	}

	if time.Now().UTC().After(sess.ExpiresAt.UTC()) {
		if err := rs.sessions.DeleteByToken(ctx, token); err != nil {
			rs.logger.Warn("delete expired session", "error", err)
		}
		return nil, fmt.Errorf("%w: credential expired", ErrUnauthenticated)
	}

	user, err := rs.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up session user: %w", err)
	}
	if user == nil {
		rs.logger.Error("session references missing user", "user_id", sess.UserID)
		return nil, ErrAccountGone
	}

	return user, nil
}

// RequireRole resolves the session and additionally asserts the user
// carries the required role. model.RoleAny admits any authenticated user.
func (rs *Resolver) RequireRole(ctx context.Context, r *http.Request, role model.Role) (*model.User, error) {
	user, err := rs.Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	if role != model.RoleAny && user.Role != role {
		return nil, fmt.Errorf("%w: requires role %s", ErrForbidden, role)
	}
	return user, nil
}

// Invalidate deletes the session named by the request's token, if any.
// Logging out with no token, or a token that no longer exists, is not an
// error: the caller is logged out either way.
func (rs *Resolver) Invalidate(ctx context.Context, r *http.Request) error {
	token := TokenFromRequest(r)
	if token == "" {
		return nil
	}
	if err := rs.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
