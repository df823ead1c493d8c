package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fitdesert/fitdesert/internal/database"
	"github.com/fitdesert/fitdesert/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
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

func createTestUser(t *testing.T, db *sql.DB, email string, role model.Role) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), NewUser{
		Email: email,
		Name:  "Test User",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func createTestGym(t *testing.T, db *sql.DB, ownerID string) *model.Gym {
	t.Helper()
	g, err := NewGymStore(db).Create(context.Background(), NewGym{
		Name:               "Iron Temple",
		Address:            "12 Main St",
		City:               "Jaipur",
		State:              "Rajasthan",
		OwnerID:            ownerID,
		QRCode:             "qr-data",
		Phone:              "9999999999",
		Email:              "gym@example.com",
		SubscriptionPlan:   model.PlanBasic,
		SubscriptionExpiry: time.Now().UTC().Add(365 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create test gym: %v", err)
	}
	return g
}

func createTestMember(t *testing.T, db *sql.DB, userID, gymID string, role model.Role) *model.Member {
	t.Helper()
	m, err := NewMemberStore(db).Create(context.Background(), NewMember{
		UserID:             userID,
		GymID:              gymID,
		Role:               role,
		ContactInfo:        "9876543210",
		PlanDurationMonths: 1,
		MembershipExpiry:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create test member: %v", err)
	}
	return m
}
