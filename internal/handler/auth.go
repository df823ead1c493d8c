package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/extauth"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

const minPasswordLength = 8

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	resolver *auth.Resolver
	extAuth  *extauth.Client
	logger   *slog.Logger
}

func NewAuthHandler(
	us *store.UserStore,
	ss *store.SessionStore,
	resolver *auth.Resolver,
	ea *extauth.Client,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:    us,
		sessions: ss,
		resolver: resolver,
		extAuth:  ea,
		logger:   logger,
	}
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      *model.User `json:"user"`
}

func newSessionResponse(sess *model.Session, user *model.User) sessionResponse {
	return sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"),
		User:      user,
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Name     string     `json:"name"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
		Phone    *string    `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleTrainee
	}
	// Head admin accounts are provisioned out of band, never self-registered.
	if !req.Role.Valid() || req.Role == model.RoleHeadAdmin {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.users.Create(r.Context(), store.NewUser{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		Phone:        req.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess, user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	// Uniform rejection for unknown email and bad password. Accounts
	// created through external auth have no hash and never match here.
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, newSessionResponse(sess, user))
}

// SessionData exchanges an externally issued session for a local one.
// First login through the external provider creates a trainee account
// with no password hash.
func (h *AuthHandler) SessionData(w http.ResponseWriter, r *http.Request) {
	if !h.extAuth.Configured() {
		writeError(w, http.StatusServiceUnavailable, "external auth not configured")
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	identity, err := h.extAuth.VerifySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Warn("external session rejected", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid session")
		return
	}

	email := strings.ToLower(identity.Email)
	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		h.logger.Error("session-data lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		user, err = h.users.Create(r.Context(), store.NewUser{
			Email:   email,
			Name:    identity.Name,
			Role:    model.RoleTrainee,
			Picture: &identity.Picture,
		})
		if err != nil {
			h.logger.Error("create external user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	// The external token doubles as the local session token. Re-exchange
	// refreshes the expiry and rebinds the token if ownership changed.
	sess, err := h.sessions.Upsert(r.Context(), sessionID, user.ID)
	if err != nil {
		h.logger.Error("upsert session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, newSessionResponse(sess, user))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.resolver.Invalidate(r.Context(), r); err != nil {
		h.logger.Error("invalidate session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	// The old-password check is skipped for accounts with no hash
	// (external auth) and for forced resets of issued passwords.
	if user.PasswordHash != "" && !user.MustChangePassword {
		if !auth.VerifyPassword(req.OldPassword, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "incorrect password")
			return
		}
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		h.logger.Error("update password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
