package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitdesert/fitdesert/internal/billing"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

const testWebhookSecret = "whsec_test"

// stripeSign builds a Stripe-Signature header for the payload.
func stripeSign(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func setupWebhook(t *testing.T) (*WebhookHandler, *store.GymStore, *model.Gym) {
	t.Helper()
	db := setupDB(t)
	gs := store.NewGymStore(db)

	owner := seedUser(t, db, "owner@example.com", model.RoleGymManager)
	gym := seedGym(t, db, owner.ID)
	if err := gs.SetStripeCustomerID(t.Context(), gym.ID, "cus_test123"); err != nil {
		t.Fatalf("set customer id: %v", err)
	}

	bc := billing.NewClient(billing.Config{
		SecretKey:     "sk_test_key",
		WebhookSecret: testWebhookSecret,
	})
	return NewWebhookHandler(gs, bc, discard()), gs, gym
}

func postWebhook(t *testing.T, h *WebhookHandler, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	rr := httptest.NewRecorder()
	h.HandleStripeWebhook(rr, req)
	return rr
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, _, _ := setupWebhook(t)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	rr := postWebhook(t, h, payload, "t=1,v1=deadbeef")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestWebhookCheckoutCompletedActivatesPlan(t *testing.T) {
	h, gs, gym := setupWebhook(t)

	payload := []byte(`{
		"id": "evt_1",
		"api_version": "2025-08-27.basil",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"customer": "cus_test123",
			"metadata": {"plan": "pro"}
		}}
	}`)
	rr := postWebhook(t, h, payload, stripeSign(payload))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	updated, err := gs.GetByID(t.Context(), gym.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload gym: %v", err)
	}
	if updated.SubscriptionPlan != model.PlanPro {
		t.Errorf("plan = %q, want pro", updated.SubscriptionPlan)
	}
	if updated.SubscriptionExpiry == nil || time.Until(*updated.SubscriptionExpiry) < 29*24*time.Hour {
		t.Errorf("expiry = %v, want about a month out", updated.SubscriptionExpiry)
	}
}

func TestWebhookSubscriptionDeletedDowngrades(t *testing.T) {
	h, gs, gym := setupWebhook(t)
	if err := gs.UpdateSubscription(t.Context(), gym.ID, model.PlanPremium, time.Now().UTC().Add(300*24*time.Hour)); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	payload := []byte(`{
		"id": "evt_2",
		"api_version": "2025-08-27.basil",
		"type": "customer.subscription.deleted",
		"data": {"object": {
			"id": "sub_test_1",
			"customer": "cus_test123"
		}}
	}`)
	rr := postWebhook(t, h, payload, stripeSign(payload))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	updated, err := gs.GetByID(t.Context(), gym.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload gym: %v", err)
	}
	if updated.SubscriptionPlan != model.PlanBasic {
		t.Errorf("plan = %q, want basic", updated.SubscriptionPlan)
	}
}

func TestWebhookUnknownCustomerStillAccepted(t *testing.T) {
	h, _, _ := setupWebhook(t)

	payload := []byte(`{
		"id": "evt_3",
		"api_version": "2025-08-27.basil",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_2",
			"customer": "cus_unknown",
			"metadata": {"plan": "pro"}
		}}
	}`)
	rr := postWebhook(t, h, payload, stripeSign(payload))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
