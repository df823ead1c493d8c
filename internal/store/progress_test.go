package store

import (
	"context"
	"testing"

	"github.com/fitdesert/fitdesert/internal/model"
)

func setupProgressFixtures(t *testing.T) (*ProgressStore, *model.Member, *model.Gym) {
	t.Helper()
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", model.RoleGymManager)
	gym := createTestGym(t, db, owner.ID)
	u := createTestUser(t, db, "trainee@example.com", model.RoleTrainee)
	m := createTestMember(t, db, u.ID, gym.ID, model.RoleTrainee)
	return NewProgressStore(db), m, gym
}

func TestProgressCreate(t *testing.T) {
	ps, m, gym := setupProgressFixtures(t)

	weight := 78.5
	notes := "felt strong"
	p, err := ps.Create(context.Background(), NewProgressLog{
		MemberID: m.ID,
		GymID:    gym.ID,
		Weight:   &weight,
		Measurements: map[string]float64{
			"chest": 102.0,
			"waist": 84.5,
		},
		Photos: []string{"front.jpg", "side.jpg"},
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("create progress log: %v", err)
	}
	if p.Weight == nil || *p.Weight != 78.5 {
		t.Errorf("weight = %v, want 78.5", p.Weight)
	}
	if p.Measurements["waist"] != 84.5 {
		t.Errorf("waist = %v, want 84.5", p.Measurements["waist"])
	}
	if len(p.Photos) != 2 {
		t.Errorf("photos = %d, want 2", len(p.Photos))
	}
}

func TestProgressCreateSparse(t *testing.T) {
	ps, m, gym := setupProgressFixtures(t)

	p, err := ps.Create(context.Background(), NewProgressLog{
		MemberID: m.ID,
		GymID:    gym.ID,
	})
	if err != nil {
		t.Fatalf("create sparse log: %v", err)
	}
	if p.Weight != nil || p.Measurements != nil || p.Photos != nil {
		t.Errorf("expected empty optional fields, got %+v", p)
	}
}

func TestProgressListByMember(t *testing.T) {
	ps, m, gym := setupProgressFixtures(t)

	for range 3 {
		if _, err := ps.Create(context.Background(), NewProgressLog{
			MemberID: m.ID,
			GymID:    gym.ID,
		}); err != nil {
			t.Fatalf("create log: %v", err)
		}
	}

	logs, err := ps.ListByMember(context.Background(), m.ID, 2)
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("len = %d, want 2", len(logs))
	}
}

func TestProgressDeleteByMember(t *testing.T) {
	ps, m, gym := setupProgressFixtures(t)

	ps.Create(context.Background(), NewProgressLog{MemberID: m.ID, GymID: gym.ID})

	if err := ps.DeleteByMember(context.Background(), m.ID); err != nil {
		t.Fatalf("delete by member: %v", err)
	}
	logs, _ := ps.ListByMember(context.Background(), m.ID, 10)
	if len(logs) != 0 {
		t.Errorf("len = %d, want 0", len(logs))
	}
}
