package store

import (
	"context"
	"testing"

	"github.com/fitdesert/fitdesert/internal/model"
)

func setupPaymentFixtures(t *testing.T) (*PaymentStore, *model.Member, *model.Gym) {
	t.Helper()
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", model.RoleGymManager)
	gym := createTestGym(t, db, owner.ID)
	u := createTestUser(t, db, "trainee@example.com", model.RoleTrainee)
	m := createTestMember(t, db, u.ID, gym.ID, model.RoleTrainee)
	return NewPaymentStore(db), m, gym
}

func TestPaymentCreate(t *testing.T) {
	ps, m, gym := setupPaymentFixtures(t)

	p, err := ps.Create(context.Background(), NewPayment{
		MemberID:        m.ID,
		GymID:           gym.ID,
		Amount:          1500,
		PaymentType:     model.PaymentRenewal,
		Status:          model.PaymentPending,
		RazorpayOrderID: "order_abc",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if p.Status != model.PaymentPending {
		t.Errorf("status = %q, want %q", p.Status, model.PaymentPending)
	}
	if p.RazorpayOrderID == nil || *p.RazorpayOrderID != "order_abc" {
		t.Errorf("order id = %v, want order_abc", p.RazorpayOrderID)
	}
	if p.PaymentDate != nil {
		t.Error("expected no payment date before verification")
	}
}

func TestPaymentMarkVerified(t *testing.T) {
	ps, m, gym := setupPaymentFixtures(t)

	created, _ := ps.Create(context.Background(), NewPayment{
		MemberID:        m.ID,
		GymID:           gym.ID,
		Amount:          1500,
		PaymentType:     model.PaymentNewMembership,
		Status:          model.PaymentPending,
		RazorpayOrderID: "order_abc",
	})

	if err := ps.MarkVerified(context.Background(), created.ID, "pay_xyz", "sig"); err != nil {
		t.Fatalf("mark verified: %v", err)
	}

	p, _ := ps.GetByID(context.Background(), created.ID)
	if p.Status != model.PaymentSuccess {
		t.Errorf("status = %q, want %q", p.Status, model.PaymentSuccess)
	}
	if p.RazorpayPaymentID == nil || *p.RazorpayPaymentID != "pay_xyz" {
		t.Errorf("payment id = %v, want pay_xyz", p.RazorpayPaymentID)
	}
	if p.PaymentDate == nil {
		t.Error("expected payment date set")
	}
}

func TestPaymentListSuccessfulByGym(t *testing.T) {
	ps, m, gym := setupPaymentFixtures(t)

	paid, _ := ps.Create(context.Background(), NewPayment{
		MemberID:    m.ID,
		GymID:       gym.ID,
		Amount:      1500,
		PaymentType: model.PaymentRenewal,
		Status:      model.PaymentPending,
	})
	ps.MarkVerified(context.Background(), paid.ID, "pay_xyz", "sig")

	// Pending payment should not appear.
	ps.Create(context.Background(), NewPayment{
		MemberID:    m.ID,
		GymID:       gym.ID,
		Amount:      500,
		PaymentType: model.PaymentAddOn,
		Status:      model.PaymentPending,
	})

	payments, err := ps.ListSuccessfulByGym(context.Background(), gym.ID, 10)
	if err != nil {
		t.Fatalf("list successful: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("len = %d, want 1", len(payments))
	}
	if payments[0].MemberName != "Test User" {
		t.Errorf("member name = %q, want %q", payments[0].MemberName, "Test User")
	}
}

func TestPaymentListByMember(t *testing.T) {
	ps, m, gym := setupPaymentFixtures(t)

	ps.Create(context.Background(), NewPayment{
		MemberID: m.ID, GymID: gym.ID, Amount: 100,
		PaymentType: model.PaymentAddOn, Status: model.PaymentPending,
	})
	ps.Create(context.Background(), NewPayment{
		MemberID: m.ID, GymID: gym.ID, Amount: 200,
		PaymentType: model.PaymentAddOn, Status: model.PaymentPending,
	})

	payments, err := ps.ListByMember(context.Background(), m.ID, 10)
	if err != nil {
		t.Fatalf("list by member: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("len = %d, want 2", len(payments))
	}
}
