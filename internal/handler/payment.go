package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fitdesert/fitdesert/internal/email"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/payment"
	"github.com/fitdesert/fitdesert/internal/store"
)

type PaymentHandler struct {
	payments *store.PaymentStore
	members  *store.MemberStore
	users    *store.UserStore
	gyms     *store.GymStore
	gateway  *payment.Client
	email    *email.Client
	logger   *slog.Logger
}

func NewPaymentHandler(
	ps *store.PaymentStore,
	ms *store.MemberStore,
	us *store.UserStore,
	gs *store.GymStore,
	gw *payment.Client,
	ec *email.Client,
	logger *slog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments: ps,
		members:  ms,
		users:    us,
		gyms:     gs,
		gateway:  gw,
		email:    ec,
		logger:   logger,
	}
}

// CreateOrder opens a Razorpay order and records a pending payment.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if !h.gateway.Configured() {
		writeError(w, http.StatusServiceUnavailable, "payments not configured")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	member, err := h.members.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("member lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "no membership found")
		return
	}

	var req struct {
		Amount      float64           `json:"amount"`
		PaymentType model.PaymentType `json:"payment_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.PaymentType == "" {
		req.PaymentType = model.PaymentRenewal
	}
	if !req.PaymentType.Valid() {
		writeError(w, http.StatusBadRequest, "invalid payment_type")
		return
	}

	orderID, err := h.gateway.CreateOrder(req.Amount, member.ID)
	if err != nil {
		h.logger.Error("create razorpay order", "error", err)
		writeError(w, http.StatusBadGateway, "payment gateway error")
		return
	}

	p, err := h.payments.Create(r.Context(), store.NewPayment{
		MemberID:        member.ID,
		GymID:           member.GymID,
		Amount:          req.Amount,
		PaymentType:     req.PaymentType,
		Status:          model.PaymentPending,
		RazorpayOrderID: orderID,
	})
	if err != nil {
		h.logger.Error("record payment", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id": p.ID,
		"order_id":   orderID,
		"amount":     req.Amount,
		"currency":   "INR",
		"key_id":     h.gateway.KeyID(),
	})
}

// Verify checks the gateway signature and marks the payment successful.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID         string `json:"payment_id"`
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	p, err := h.payments.GetByID(r.Context(), req.PaymentID)
	if err != nil {
		h.logger.Error("get payment", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.RazorpayOrderID == nil || *p.RazorpayOrderID != req.RazorpayOrderID {
		writeError(w, http.StatusBadRequest, "order mismatch")
		return
	}
	if p.Status == model.PaymentSuccess {
		writeError(w, http.StatusConflict, "payment already verified")
		return
	}

	if !h.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		writeError(w, http.StatusBadRequest, "signature verification failed")
		return
	}

	if err := h.payments.MarkVerified(r.Context(), p.ID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		h.logger.Error("mark payment verified", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.sendReceipt(r, p)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *PaymentHandler) sendReceipt(r *http.Request, p *model.Payment) {
	ctx := r.Context()
	member, err := h.members.GetByID(ctx, p.MemberID)
	if err != nil || member == nil {
		return
	}
	user, err := h.users.GetByID(ctx, member.UserID)
	if err != nil || user == nil {
		return
	}
	if err := h.email.SendReceipt(ctx, user.Email, user.Name, p.Amount, string(p.PaymentType)); err != nil {
		h.logger.Error("send receipt", "email", user.Email, "error", err)
	}
}

func (h *PaymentHandler) MyPayments(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	member, err := h.members.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("member lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "no membership found")
		return
	}

	payments, err := h.payments.ListByMember(r.Context(), member.ID, 50)
	if err != nil {
		h.logger.Error("list payments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) gymForManager(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return "", false
	}
	gym, err := h.gyms.GetByOwnerID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("owner gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "no gym registered")
		return "", false
	}
	return gym.ID, true
}

// AllGymPayments lists every payment for the manager's gym, pending
// included.
func (h *PaymentHandler) AllGymPayments(w http.ResponseWriter, r *http.Request) {
	gymID, ok := h.gymForManager(w, r)
	if !ok {
		return
	}
	payments, err := h.payments.ListByGym(r.Context(), gymID, 100)
	if err != nil {
		h.logger.Error("list gym payments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

// GymPayments lists verified payments with member names attached.
func (h *PaymentHandler) GymPayments(w http.ResponseWriter, r *http.Request) {
	gymID, ok := h.gymForManager(w, r)
	if !ok {
		return
	}
	payments, err := h.payments.ListSuccessfulByGym(r.Context(), gymID, 100)
	if err != nil {
		h.logger.Error("list gym payments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
