package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/billing"
	"github.com/fitdesert/fitdesert/internal/email"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/qr"
	"github.com/fitdesert/fitdesert/internal/store"
)

type GymHandler struct {
	gyms       *store.GymStore
	users      *store.UserStore
	members    *store.MemberStore
	attendance *store.AttendanceStore
	payments   *store.PaymentStore
	workouts   *store.WorkoutPlanStore
	diets      *store.DietPlanStore
	progress   *store.ProgressStore
	email      *email.Client
	billing    *billing.Client
	logger     *slog.Logger
}

func NewGymHandler(
	gs *store.GymStore,
	us *store.UserStore,
	ms *store.MemberStore,
	as *store.AttendanceStore,
	ps *store.PaymentStore,
	ws *store.WorkoutPlanStore,
	ds *store.DietPlanStore,
	prs *store.ProgressStore,
	ec *email.Client,
	bc *billing.Client,
	logger *slog.Logger,
) *GymHandler {
	return &GymHandler{
		gyms:       gs,
		users:      us,
		members:    ms,
		attendance: as,
		payments:   ps,
		workouts:   ws,
		diets:      ds,
		progress:   prs,
		email:      ec,
		billing:    bc,
		logger:     logger,
	}
}

type gymResponse struct {
	*model.Gym
	Stats model.GymStats `json:"stats"`
}

func (h *GymHandler) withStats(r *http.Request, gym *model.Gym) gymResponse {
	ctx := r.Context()
	resp := gymResponse{Gym: gym}

	var err error
	if resp.Stats.TotalMembers, err = h.members.CountByGym(ctx, gym.ID); err != nil {
		h.logger.Error("count members", "gym_id", gym.ID, "error", err)
	}
	if resp.Stats.ActiveMembers, err = h.members.CountActiveByGym(ctx, gym.ID); err != nil {
		h.logger.Error("count active members", "gym_id", gym.ID, "error", err)
	}
	today := time.Now().UTC().Format("2006-01-02")
	if resp.Stats.TodayAttendance, err = h.attendance.CountByGymAndDate(ctx, gym.ID, today); err != nil {
		h.logger.Error("count attendance", "gym_id", gym.ID, "error", err)
	}
	return resp
}

// generateQR creates the gym's attendance QR image and stores it. The
// payload encodes the gym ID so it can only run after insert.
func (h *GymHandler) generateQR(r *http.Request, gym *model.Gym) {
	code, err := qr.GenerateBase64(qr.AttendanceURI(gym.ID))
	if err != nil {
		h.logger.Error("generate qr code", "gym_id", gym.ID, "error", err)
		return
	}
	if err := h.gyms.SetQRCode(r.Context(), gym.ID, code); err != nil {
		h.logger.Error("store qr code", "gym_id", gym.ID, "error", err)
		return
	}
	gym.QRCode = code
}

type createGymRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ManagerEmail string `json:"manager_email"`
	ManagerName  string `json:"manager_name"`
}

// Create is the head-admin onboarding path: the manager account is
// found or created, and the gym starts verified on premium for a year.
func (h *GymHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGymRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.ManagerEmail = strings.ToLower(strings.TrimSpace(req.ManagerEmail))
	if req.Name == "" || req.ManagerEmail == "" {
		writeError(w, http.StatusBadRequest, "name and manager_email are required")
		return
	}

	manager, err := h.users.GetByEmail(r.Context(), req.ManagerEmail)
	if err != nil {
		h.logger.Error("manager lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if manager == nil {
		password := generatePassword()
		hash, err := auth.HashPassword(password)
		if err != nil {
			h.logger.Error("hash password", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		name := strings.TrimSpace(req.ManagerName)
		if name == "" {
			name = req.ManagerEmail
		}
		manager, err = h.users.Create(r.Context(), store.NewUser{
			Email:              req.ManagerEmail,
			Name:               name,
			Role:               model.RoleGymManager,
			PasswordHash:       hash,
			MustChangePassword: true,
		})
		if err != nil {
			h.logger.Error("create manager", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.email.SendWelcome(r.Context(), manager.Email, manager.Name, password); err != nil {
			h.logger.Error("send welcome email", "email", manager.Email, "error", err)
		}
	} else if manager.Role != model.RoleGymManager {
		writeError(w, http.StatusBadRequest, "manager_email belongs to a non-manager account")
		return
	}

	existing, err := h.gyms.GetByOwnerID(r.Context(), manager.ID)
	if err != nil {
		h.logger.Error("owner gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "manager already owns a gym")
		return
	}

	gym, err := h.gyms.Create(r.Context(), store.NewGym{
		Name:               req.Name,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		OwnerID:            manager.ID,
		KYCVerified:        true,
		Phone:              req.Phone,
		Email:              req.Email,
		SubscriptionPlan:   model.PlanPremium,
		SubscriptionExpiry: time.Now().UTC().Add(365 * 24 * time.Hour),
	})
	if err != nil {
		h.logger.Error("create gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.generateQR(r, gym)

	writeJSON(w, http.StatusCreated, gym)
}

// Register is the self-service path for an authenticated manager. The
// gym starts unverified on the basic plan with a 30-day trial.
func (h *GymHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createGymRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := h.gyms.GetByOwnerID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("owner gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "you have already registered a gym")
		return
	}

	gym, err := h.gyms.Create(r.Context(), store.NewGym{
		Name:               req.Name,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		OwnerID:            user.ID,
		Phone:              req.Phone,
		Email:              req.Email,
		SubscriptionPlan:   model.PlanBasic,
		SubscriptionExpiry: time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		h.logger.Error("create gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.generateQR(r, gym)

	writeJSON(w, http.StatusCreated, gym)
}

// ownedGym loads the gym belonging to the authenticated manager,
// writing a 404 if they have not registered one yet.
func (h *GymHandler) ownedGym(w http.ResponseWriter, r *http.Request) (*model.Gym, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	gym, err := h.gyms.GetByOwnerID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("owner gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "no gym registered")
		return nil, false
	}
	return gym, true
}

func (h *GymHandler) MyGym(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.ownedGym(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.withStats(r, gym))
}

func (h *GymHandler) List(w http.ResponseWriter, r *http.Request) {
	gyms, err := h.gyms.List(r.Context())
	if err != nil {
		h.logger.Error("list gyms", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]gymResponse, 0, len(gyms))
	for _, gym := range gyms {
		resp = append(resp, h.withStats(r, gym))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *GymHandler) Get(w http.ResponseWriter, r *http.Request) {
	gym, err := h.gyms.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "gym not found")
		return
	}
	writeJSON(w, http.StatusOK, gym)
}

func (h *GymHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	gym, err := h.gyms.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "gym not found")
		return
	}
	if user.Role != model.RoleHeadAdmin && gym.OwnerID != user.ID {
		writeError(w, http.StatusForbidden, "not your gym")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		State   string `json:"state"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.gyms.UpdateDetails(r.Context(), gym.ID, req.Name, req.Address, req.City, req.State, req.Phone, req.Email); err != nil {
		h.logger.Error("update gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := h.gyms.GetByID(r.Context(), gym.ID)
	if err != nil || updated == nil {
		h.logger.Error("reload gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *GymHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan         model.SubscriptionPlan `json:"plan"`
		DurationDays int                    `json:"duration_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Plan.Valid() {
		writeError(w, http.StatusBadRequest, "invalid plan")
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = 30
	}

	id := r.PathValue("id")
	gym, err := h.gyms.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "gym not found")
		return
	}

	expiry := time.Now().UTC().Add(time.Duration(req.DurationDays) * 24 * time.Hour)
	if err := h.gyms.UpdateSubscription(r.Context(), id, req.Plan, expiry); err != nil {
		h.logger.Error("update subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"plan":                req.Plan,
		"subscription_expiry": expiry,
	})
}

func (h *GymHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	gym, err := h.gyms.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "gym not found")
		return
	}

	if err := h.gyms.SetActive(r.Context(), id, req.IsActive); err != nil {
		h.logger.Error("set gym status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "is_active": req.IsActive})
}

// Delete removes a gym and everything hanging off it. Deletion keeps
// going past individual failures and reports them together.
func (h *GymHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	gym, err := h.gyms.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("get gym", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "gym not found")
		return
	}

	var errs error
	errs = multierr.Append(errs, h.attendance.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.payments.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.workouts.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.diets.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.progress.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.members.DeleteByGym(ctx, id))
	errs = multierr.Append(errs, h.gyms.Delete(ctx, id))
	if errs != nil {
		h.logger.Error("delete gym cascade", "gym_id", id, "error", errs)
		writeError(w, http.StatusInternalServerError, "delete incomplete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubscriptionCheckout starts a Stripe checkout for the manager's gym.
func (h *GymHandler) SubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	if !h.billing.Configured() {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	gym, ok := h.ownedGym(w, r)
	if !ok {
		return
	}

	var req struct {
		Plan model.SubscriptionPlan `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Plan.Valid() {
		writeError(w, http.StatusBadRequest, "invalid plan")
		return
	}

	if gym.StripeCustomerID == "" {
		user, _ := auth.UserFromContext(r.Context())
		customerID, err := h.billing.CreateCustomer(user.Email, gym.Name)
		if err != nil {
			h.logger.Error("create stripe customer", "error", err)
			writeError(w, http.StatusBadGateway, "billing provider error")
			return
		}
		if err := h.gyms.SetStripeCustomerID(r.Context(), gym.ID, customerID); err != nil {
			h.logger.Error("store stripe customer", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		gym.StripeCustomerID = customerID
	}

	url, err := h.billing.CreateCheckoutSession(gym.StripeCustomerID, req.Plan)
	if err != nil {
		h.logger.Error("create checkout session", "error", err)
		writeError(w, http.StatusBadGateway, "billing provider error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

// SubscriptionPortal returns a Stripe billing portal URL for a gym that
// has already been through checkout.
func (h *GymHandler) SubscriptionPortal(w http.ResponseWriter, r *http.Request) {
	if !h.billing.Configured() {
		writeError(w, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	gym, ok := h.ownedGym(w, r)
	if !ok {
		return
	}
	if gym.StripeCustomerID == "" {
		writeError(w, http.StatusConflict, "no billing account; start a checkout first")
		return
	}

	var req struct {
		ReturnURL string `json:"return_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ReturnURL == "" {
		writeError(w, http.StatusBadRequest, "return_url is required")
		return
	}

	url, err := h.billing.CreateBillingPortalSession(gym.StripeCustomerID, req.ReturnURL)
	if err != nil {
		h.logger.Error("create billing portal session", "error", err)
		writeError(w, http.StatusBadGateway, "billing provider error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"portal_url": url})
}
