package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/fitdesert/fitdesert/internal/billing"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

type WebhookHandler struct {
	gyms    *store.GymStore
	billing *billing.Client
	logger  *slog.Logger
}

func NewWebhookHandler(gs *store.GymStore, bc *billing.Client, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{gyms: gs, billing: bc, logger: logger}
}

func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	event, err := h.billing.ConstructWebhookEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(r.Context(), event)
	case "invoice.paid":
		h.handleInvoicePaid(r.Context(), event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(r.Context(), event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) gymForCustomer(ctx context.Context, customer *stripe.Customer) *model.Gym {
	if customer == nil {
		return nil
	}
	gym, err := h.gyms.GetByStripeCustomerID(ctx, customer.ID)
	if err != nil {
		h.logger.Error("webhook: gym lookup", "customer_id", customer.ID, "error", err)
		return nil
	}
	if gym == nil {
		h.logger.Warn("webhook: no gym for customer", "customer_id", customer.ID)
	}
	return gym
}

// handleCheckoutCompleted activates the plan the owner just paid for.
// The plan name travels in the checkout session metadata.
func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		h.logger.Error("webhook: unmarshal checkout session", "error", err)
		return
	}

	gym := h.gymForCustomer(ctx, sess.Customer)
	if gym == nil {
		return
	}

	plan := model.SubscriptionPlan(sess.Metadata["plan"])
	if !plan.Valid() {
		h.logger.Error("webhook: checkout session missing plan", "gym_id", gym.ID)
		return
	}

	expiry := time.Now().UTC().Add(30 * 24 * time.Hour)
	if err := h.gyms.UpdateSubscription(ctx, gym.ID, plan, expiry); err != nil {
		h.logger.Error("webhook: update subscription", "gym_id", gym.ID, "error", err)
		return
	}
	h.logger.Info("webhook: checkout completed", "gym_id", gym.ID, "plan", plan)
}

// handleInvoicePaid pushes the expiry to the paid period's end, with a
// grace buffer for renewal webhooks arriving late.
func (h *WebhookHandler) handleInvoicePaid(ctx context.Context, event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("webhook: unmarshal invoice", "error", err)
		return
	}

	gym := h.gymForCustomer(ctx, invoice.Customer)
	if gym == nil {
		return
	}

	expiry := time.Unix(invoice.PeriodEnd, 0).UTC().Add(7 * 24 * time.Hour)
	if err := h.gyms.UpdateSubscription(ctx, gym.ID, gym.SubscriptionPlan, expiry); err != nil {
		h.logger.Error("webhook: extend subscription", "gym_id", gym.ID, "error", err)
		return
	}
	h.logger.Info("webhook: invoice paid", "gym_id", gym.ID, "expiry", expiry)
}

// handleSubscriptionDeleted drops the gym back to basic when the Stripe
// subscription ends.
func (h *WebhookHandler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("webhook: unmarshal subscription", "error", err)
		return
	}

	gym := h.gymForCustomer(ctx, sub.Customer)
	if gym == nil {
		return
	}

	expiry := time.Now().UTC()
	if sub.CancelAt > 0 {
		expiry = time.Unix(sub.CancelAt, 0).UTC()
	}
	if err := h.gyms.UpdateSubscription(ctx, gym.ID, model.PlanBasic, expiry); err != nil {
		h.logger.Error("webhook: downgrade subscription", "gym_id", gym.ID, "error", err)
		return
	}
	h.logger.Info("webhook: subscription deleted", "gym_id", gym.ID)
}
