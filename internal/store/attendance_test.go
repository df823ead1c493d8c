package store

import (
	"context"
	"testing"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

func setupAttendanceFixtures(t *testing.T) (*AttendanceStore, *model.Member, *model.Gym) {
	t.Helper()
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", model.RoleGymManager)
	gym := createTestGym(t, db, owner.ID)
	u := createTestUser(t, db, "trainee@example.com", model.RoleTrainee)
	m := createTestMember(t, db, u.ID, gym.ID, model.RoleTrainee)
	return NewAttendanceStore(db), m, gym
}

func TestAttendanceCheckIn(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	now := time.Now().UTC()
	a, err := as.CheckIn(context.Background(), m.ID, gym.ID, now, "2026-09-01")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if a.MemberID != m.ID {
		t.Errorf("member_id = %q, want %q", a.MemberID, m.ID)
	}
	if a.CheckOutTime != nil {
		t.Error("expected no check-out time on check-in")
	}
}

func TestAttendanceCheckInDuplicateDate(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	now := time.Now().UTC()
	if _, err := as.CheckIn(context.Background(), m.ID, gym.ID, now, "2026-09-01"); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	if _, err := as.CheckIn(context.Background(), m.ID, gym.ID, now, "2026-09-01"); err == nil {
		t.Fatal("expected error for second check-in on same date, got nil")
	}
}

func TestAttendanceGetByMemberAndDate(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	created, _ := as.CheckIn(context.Background(), m.ID, gym.ID, time.Now().UTC(), "2026-09-01")

	a, err := as.GetByMemberAndDate(context.Background(), m.ID, gym.ID, "2026-09-01")
	if err != nil {
		t.Fatalf("get by member and date: %v", err)
	}
	if a == nil || a.ID != created.ID {
		t.Fatalf("expected attendance %q, got %+v", created.ID, a)
	}

	none, err := as.GetByMemberAndDate(context.Background(), m.ID, gym.ID, "2026-09-02")
	if err != nil {
		t.Fatalf("get for other date: %v", err)
	}
	if none != nil {
		t.Error("expected nil for day with no visit")
	}
}

func TestAttendanceSetCheckOut(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	created, _ := as.CheckIn(context.Background(), m.ID, gym.ID, time.Now().UTC(), "2026-09-01")

	out := time.Now().UTC().Add(time.Hour)
	if err := as.SetCheckOut(context.Background(), created.ID, out); err != nil {
		t.Fatalf("set check out: %v", err)
	}

	a, _ := as.GetByMemberAndDate(context.Background(), m.ID, gym.ID, "2026-09-01")
	if a.CheckOutTime == nil {
		t.Fatal("expected check-out time set")
	}
}

func TestAttendanceListByMember(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	base := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	as.CheckIn(context.Background(), m.ID, gym.ID, base, "2026-08-30")
	as.CheckIn(context.Background(), m.ID, gym.ID, base.Add(24*time.Hour), "2026-08-31")
	as.CheckIn(context.Background(), m.ID, gym.ID, base.Add(48*time.Hour), "2026-09-01")

	records, err := as.ListByMember(context.Background(), m.ID, 2)
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Date != "2026-09-01" {
		t.Errorf("first date = %q, want newest first", records[0].Date)
	}
}

func TestAttendanceCounts(t *testing.T) {
	as, m, gym := setupAttendanceFixtures(t)

	base := time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC)
	as.CheckIn(context.Background(), m.ID, gym.ID, base, "2026-08-31")
	as.CheckIn(context.Background(), m.ID, gym.ID, base.Add(24*time.Hour), "2026-09-01")

	count, err := as.CountByGymAndDate(context.Background(), gym.ID, "2026-09-01")
	if err != nil {
		t.Fatalf("count by date: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	since, err := as.CountByGymSince(context.Background(), gym.ID, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("count since: %v", err)
	}
	if since != 2 {
		t.Errorf("count = %d, want 2", since)
	}
}
