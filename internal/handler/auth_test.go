package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/extauth"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *store.UserStore, *store.SessionStore) {
	t.Helper()
	db := setupDB(t)
	us := store.NewUserStore(db)
	ss := store.NewSessionStore(db)
	resolver := auth.NewResolver(ss, us, discard())
	h := NewAuthHandler(us, ss, resolver, extauth.NewClient(""), discard())
	return h, us, ss
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	req := authedRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "new@example.com",
		"name":     "New User",
		"password": "longenough",
	}, nil)
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var resp sessionResponse
	decodeBody(t, rr, &resp)
	if resp.Token == "" {
		t.Error("expected session token")
	}
	if resp.User.Role != model.RoleTrainee {
		t.Errorf("role = %q, want trainee by default", resp.User.Role)
	}

	user, err := us.GetByEmail(t.Context(), "new@example.com")
	if err != nil || user == nil {
		t.Fatalf("expected user created, got %v, %v", user, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	body := map[string]any{"email": "dup@example.com", "name": "A", "password": "longenough"}
	rr := httptest.NewRecorder()
	h.Register(rr, authedRequest(t, http.MethodPost, "/api/auth/register", body, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Register(rr, authedRequest(t, http.MethodPost, "/api/auth/register", body, nil))
	if rr.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", rr.Code)
	}
}

func TestRegisterRejectsHeadAdmin(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Register(rr, authedRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "boss@example.com",
		"name":     "Boss",
		"password": "longenough",
		"role":     "head_admin",
	}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	rr := httptest.NewRecorder()
	h.Register(rr, authedRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "short@example.com",
		"name":     "S",
		"password": "short",
	}, nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestLoginUniformRejection(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	hash, _ := auth.HashPassword("rightpassword")
	if _, err := us.Create(t.Context(), store.NewUser{
		Email: "known@example.com", Name: "K", Role: model.RoleTrainee, PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	// External-auth account with no hash never matches a password.
	if _, err := us.Create(t.Context(), store.NewUser{
		Email: "external@example.com", Name: "E", Role: model.RoleTrainee,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"correct credentials", "known@example.com", "rightpassword", http.StatusOK},
		{"wrong password", "known@example.com", "wrongpassword", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "rightpassword", http.StatusUnauthorized},
		{"no password hash", "external@example.com", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.Login(rr, authedRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
				"email": tt.email, "password": tt.password,
			}, nil))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	hash, _ := auth.HashPassword("rightpassword")
	if _, err := us.Create(t.Context(), store.NewUser{
		Email: "cookie@example.com", Name: "C", Role: model.RoleTrainee, PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rr := httptest.NewRecorder()
	h.Login(rr, authedRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "cookie@example.com", "password": "rightpassword",
	}, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Error("expected HttpOnly session cookie")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	h, us, ss := setupAuthHandler(t)

	hash, _ := auth.HashPassword("rightpassword")
	user, err := us.Create(t.Context(), store.NewUser{
		Email: "out@example.com", Name: "O", Role: model.RoleTrainee, PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	sess, err := ss.Create(t.Context(), user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	logout := func() int {
		req := authedRequest(t, http.MethodPost, "/api/auth/logout", nil, user)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sess.Token})
		rr := httptest.NewRecorder()
		h.Logout(rr, req)
		return rr.Code
	}

	if code := logout(); code != http.StatusOK {
		t.Errorf("first logout status = %d", code)
	}
	if code := logout(); code != http.StatusOK {
		t.Errorf("second logout status = %d, want idempotent 200", code)
	}

	got, err := ss.GetByToken(t.Context(), sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != nil {
		t.Error("expected session deleted")
	}
}

func TestChangePassword(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	hash, _ := auth.HashPassword("oldpassword1")
	user, err := us.Create(t.Context(), store.NewUser{
		Email: "pw@example.com", Name: "P", Role: model.RoleTrainee, PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	// Wrong old password rejected.
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, authedRequest(t, http.MethodPost, "/api/auth/change-password", map[string]any{
		"old_password": "nope", "new_password": "newpassword1",
	}, user))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong old password status = %d, want 401", rr.Code)
	}

	// Correct old password accepted.
	rr = httptest.NewRecorder()
	h.ChangePassword(rr, authedRequest(t, http.MethodPost, "/api/auth/change-password", map[string]any{
		"old_password": "oldpassword1", "new_password": "newpassword1",
	}, user))
	if rr.Code != http.StatusOK {
		t.Fatalf("change status = %d: %s", rr.Code, rr.Body.String())
	}

	updated, err := us.GetByID(t.Context(), user.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload user: %v", err)
	}
	if !auth.VerifyPassword("newpassword1", updated.PasswordHash) {
		t.Error("new password does not verify")
	}
}

func TestChangePasswordForcedResetSkipsOldCheck(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	hash, _ := auth.HashPassword("issued-password")
	user, err := us.Create(t.Context(), store.NewUser{
		Email: "forced@example.com", Name: "F", Role: model.RoleTrainee,
		PasswordHash: hash, MustChangePassword: true,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ChangePassword(rr, authedRequest(t, http.MethodPost, "/api/auth/change-password", map[string]any{
		"new_password": "chosenbyuser1",
	}, user))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	updated, err := us.GetByID(t.Context(), user.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.MustChangePassword {
		t.Error("must_change_password still set")
	}
}

func TestSessionDataNotConfigured(t *testing.T) {
	h, _, _ := setupAuthHandler(t)

	req := authedRequest(t, http.MethodGet, "/api/auth/session-data", nil, nil)
	req.Header.Set("X-Session-ID", "ext-session-token")
	rr := httptest.NewRecorder()
	h.SessionData(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestMe(t *testing.T) {
	h, us, _ := setupAuthHandler(t)

	hash, _ := auth.HashPassword("rightpassword")
	user, err := us.Create(t.Context(), store.NewUser{
		Email: "me@example.com", Name: "Me", Role: model.RoleGymManager, PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rr := httptest.NewRecorder()
	h.Me(rr, authedRequest(t, http.MethodGet, "/api/auth/me", nil, user))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var got model.User
	decodeBody(t, rr, &got)
	if got.Email != "me@example.com" || got.Role != model.RoleGymManager {
		t.Errorf("unexpected user: %+v", got)
	}
}
