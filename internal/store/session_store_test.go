package store

import (
	"context"
	"testing"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

func TestSessionCreate(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u := createTestUser(t, db, "alice@example.com", model.RoleTrainee)

	sess, err := ss.Create(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %q, want %q", sess.UserID, u.ID)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
		t.Errorf("expiry %v from now, want about 7 days", ttl)
	}
}

func TestSessionGetByToken(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u := createTestUser(t, db, "alice@example.com", model.RoleTrainee)
	created, _ := ss.Create(context.Background(), u.ID)

	sess, err := ss.GetByToken(context.Background(), created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	sess, err := ss.GetByToken(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

// Expired rows stay visible to GetByToken so the caller can observe the
// expiry and clean up.
func TestSessionGetByTokenReturnsExpired(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u := createTestUser(t, db, "alice@example.com", model.RoleTrainee)
	created, _ := ss.Create(context.Background(), u.ID)

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, created.ID); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	sess, err := ss.GetByToken(context.Background(), created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected expired session to be returned")
	}
	if !sess.ExpiresAt.Before(time.Now().UTC()) {
		t.Error("expected expires_at in the past")
	}
}

func TestSessionUpsert(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u1 := createTestUser(t, db, "alice@example.com", model.RoleTrainee)
	u2 := createTestUser(t, db, "bob@example.com", model.RoleTrainee)

	first, err := ss.Upsert(context.Background(), "external-token", u1.ID)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.UserID != u1.ID {
		t.Errorf("user_id = %q, want %q", first.UserID, u1.ID)
	}

	// Same token again rebinds the session to the new owner.
	second, err := ss.Upsert(context.Background(), "external-token", u2.ID)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.UserID != u2.ID {
		t.Errorf("user_id = %q, want %q", second.UserID, u2.ID)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE token = ?`, "external-token").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 session row, got %d", count)
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u := createTestUser(t, db, "alice@example.com", model.RoleTrainee)
	created, _ := ss.Create(context.Background(), u.ID)

	if err := ss.DeleteByToken(context.Background(), created.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sess, err := ss.GetByToken(context.Background(), created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}

	// Deleting again is a no-op.
	if err := ss.DeleteByToken(context.Background(), created.Token); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSessionDeleteByUserID(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	u := createTestUser(t, db, "alice@example.com", model.RoleTrainee)
	ss.Create(context.Background(), u.ID)
	ss.Create(context.Background(), u.ID)

	if err := ss.DeleteByUserID(context.Background(), u.ID); err != nil {
		t.Fatalf("delete by user id: %v", err)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, u.ID).Scan(&count)
	if count != 0 {
		t.Errorf("expected 0 sessions, got %d", count)
	}
}
