package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/database"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func seedUser(t *testing.T, db *sql.DB, email string, role model.Role) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := store.NewUserStore(db).Create(t.Context(), store.NewUser{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedGym(t *testing.T, db *sql.DB, ownerID string) *model.Gym {
	t.Helper()
	gym, err := store.NewGymStore(db).Create(t.Context(), store.NewGym{
		Name:               "Iron Temple",
		OwnerID:            ownerID,
		SubscriptionPlan:   model.PlanBasic,
		SubscriptionExpiry: time.Now().UTC().Add(365 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed gym: %v", err)
	}
	return gym
}

func seedMember(t *testing.T, db *sql.DB, userID, gymID string, role model.Role) *model.Member {
	t.Helper()
	member, err := store.NewMemberStore(db).Create(t.Context(), store.NewMember{
		UserID:             userID,
		GymID:              gymID,
		Role:               role,
		PlanDurationMonths: 1,
		MembershipExpiry:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}

// authedRequest builds a JSON request carrying an already-resolved user,
// the way the auth middleware hands requests to handlers.
func authedRequest(t *testing.T, method, target string, body any, user *model.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}
