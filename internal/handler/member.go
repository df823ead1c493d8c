package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/email"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

type MemberHandler struct {
	members    *store.MemberStore
	users      *store.UserStore
	gyms       *store.GymStore
	attendance *store.AttendanceStore
	payments   *store.PaymentStore
	workouts   *store.WorkoutPlanStore
	diets      *store.DietPlanStore
	progress   *store.ProgressStore
	email      *email.Client
	logger     *slog.Logger
}

func NewMemberHandler(
	ms *store.MemberStore,
	us *store.UserStore,
	gs *store.GymStore,
	as *store.AttendanceStore,
	ps *store.PaymentStore,
	ws *store.WorkoutPlanStore,
	ds *store.DietPlanStore,
	prs *store.ProgressStore,
	ec *email.Client,
	logger *slog.Logger,
) *MemberHandler {
	return &MemberHandler{
		members:    ms,
		users:      us,
		gyms:       gs,
		attendance: as,
		payments:   ps,
		workouts:   ws,
		diets:      ds,
		progress:   prs,
		email:      ec,
		logger:     logger,
	}
}

// managedGym loads the gym owned by the authenticated manager.
func (h *MemberHandler) managedGym(w http.ResponseWriter, r *http.Request) (*model.Gym, bool) {
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

// memberInGym loads the member from the path and checks it belongs to
// the manager's gym.
func (h *MemberHandler) memberInGym(w http.ResponseWriter, r *http.Request, gymID string) (*model.Member, bool) {
	member, err := h.members.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if member == nil || member.GymID != gymID {
		writeError(w, http.StatusNotFound, "member not found")
		return nil, false
	}
	return member, true
}

type createMemberRequest struct {
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Phone              *string    `json:"phone"`
	Role               model.Role `json:"role"`
	ContactInfo        string     `json:"contact_info"`
	MembershipPlan     *string    `json:"membership_plan"`
	PlanDurationMonths int        `json:"plan_duration_months"`
	Goal               *string    `json:"goal"`
	Height             *float64   `json:"height"`
	Weight             *float64   `json:"weight"`
	Age                *int       `json:"age"`
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}

	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}
	if req.Role == "" {
		req.Role = model.RoleTrainee
	}
	if req.Role != model.RoleTrainee && req.Role != model.RoleTrainer {
		writeError(w, http.StatusBadRequest, "role must be trainee or trainer")
		return
	}
	if req.PlanDurationMonths <= 0 {
		req.PlanDurationMonths = 1
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("member user lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		password := generatePassword()
		hash, err := auth.HashPassword(password)
		if err != nil {
			h.logger.Error("hash password", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		user, err = h.users.Create(r.Context(), store.NewUser{
			Email:              req.Email,
			Name:               req.Name,
			Role:               req.Role,
			Phone:              req.Phone,
			PasswordHash:       hash,
			MustChangePassword: true,
		})
		if err != nil {
			h.logger.Error("create member user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.email.SendWelcome(r.Context(), user.Email, user.Name, password); err != nil {
			h.logger.Error("send welcome email", "email", user.Email, "error", err)
		}
	}

	existing, err := h.members.GetByUserAndGym(r.Context(), user.ID, gym.ID)
	if err != nil {
		h.logger.Error("membership lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "already a member of this gym")
		return
	}

	// Month granularity follows billing cycles of 30 days, not
	// calendar months.
	expiry := time.Now().UTC().Add(time.Duration(req.PlanDurationMonths) * 30 * 24 * time.Hour)

	member, err := h.members.Create(r.Context(), store.NewMember{
		UserID:             user.ID,
		GymID:              gym.ID,
		Role:               req.Role,
		ContactInfo:        req.ContactInfo,
		MembershipPlan:     req.MembershipPlan,
		PlanDurationMonths: req.PlanDurationMonths,
		MembershipExpiry:   expiry,
		Goal:               req.Goal,
		Height:             req.Height,
		Weight:             req.Weight,
		Age:                req.Age,
	})
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	member.UserName = user.Name
	member.UserEmail = user.Email

	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	members, err := h.members.ListByGym(r.Context(), gym.ID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if members == nil {
		members = []*model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	trainers, err := h.members.ListTrainersByGym(r.Context(), gym.ID)
	if err != nil {
		h.logger.Error("list trainers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if trainers == nil {
		trainers = []*model.Member{}
	}
	writeJSON(w, http.StatusOK, trainers)
}

// MyProfile returns the authenticated member's own membership together
// with the gym name and attendance QR code.
func (h *MemberHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
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

	gym, err := h.gyms.GetByID(r.Context(), member.GymID)
	if err != nil {
		h.logger.Error("gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{"member": member}
	if gym != nil {
		resp["gym_name"] = gym.Name
		resp["gym_qr_code"] = gym.QRCode
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireRoles(w, r, model.RoleGymManager, model.RoleTrainer, model.RoleHeadAdmin)
	if !ok {
		return
	}

	member, err := h.members.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	// Managers see only their own gym's members; trainers only members
	// of a gym they work at.
	switch user.Role {
	case model.RoleGymManager:
		gym, err := h.gyms.GetByOwnerID(r.Context(), user.ID)
		if err != nil || gym == nil || gym.ID != member.GymID {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
	case model.RoleTrainer:
		self, err := h.members.GetByUserAndGym(r.Context(), user.ID, member.GymID)
		if err != nil || self == nil {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
	}

	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	member, ok := h.memberInGym(w, r, gym.ID)
	if !ok {
		return
	}

	var req struct {
		MembershipPlan     *string  `json:"membership_plan"`
		PlanDurationMonths int      `json:"plan_duration_months"`
		Goal               *string  `json:"goal"`
		AssignedTrainerID  *string  `json:"assigned_trainer_id"`
		Height             *float64 `json:"height"`
		Weight             *float64 `json:"weight"`
		Age                *int     `json:"age"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.PlanDurationMonths <= 0 {
		req.PlanDurationMonths = member.PlanDurationMonths
	}

	err := h.members.Update(r.Context(), member.ID, store.MemberUpdate{
		MembershipPlan:     req.MembershipPlan,
		PlanDurationMonths: req.PlanDurationMonths,
		Goal:               req.Goal,
		AssignedTrainerID:  req.AssignedTrainerID,
		Height:             req.Height,
		Weight:             req.Weight,
		Age:                req.Age,
	})
	if err != nil {
		h.logger.Error("update member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := h.members.GetByID(r.Context(), member.ID)
	if err != nil || updated == nil {
		h.logger.Error("reload member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MemberHandler) AssignTrainer(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	member, ok := h.memberInGym(w, r, gym.ID)
	if !ok {
		return
	}

	var req struct {
		TrainerID string `json:"trainer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TrainerID == "" {
		writeError(w, http.StatusBadRequest, "trainer_id is required")
		return
	}

	trainer, err := h.members.GetByID(r.Context(), req.TrainerID)
	if err != nil {
		h.logger.Error("get trainer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if trainer == nil || trainer.GymID != gym.ID || trainer.Role != model.RoleTrainer {
		writeError(w, http.StatusBadRequest, "trainer not found at this gym")
		return
	}

	if err := h.members.AssignTrainer(r.Context(), member.ID, trainer.ID); err != nil {
		h.logger.Error("assign trainer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"member_id":  member.ID,
		"trainer_id": trainer.ID,
	})
}

func (h *MemberHandler) Extend(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	member, ok := h.memberInGym(w, r, gym.ID)
	if !ok {
		return
	}

	var req struct {
		Months int `json:"months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Months <= 0 {
		writeError(w, http.StatusBadRequest, "months must be positive")
		return
	}

	expiry, err := h.members.ExtendExpiry(r.Context(), member.ID, req.Months*30)
	if err != nil {
		h.logger.Error("extend membership", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member_id":         member.ID,
		"membership_expiry": expiry,
	})
}

// Delete removes a membership and its dependent records. If the user
// holds no other membership and is not staff, the account goes too.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gym, ok := h.managedGym(w, r)
	if !ok {
		return
	}
	member, ok := h.memberInGym(w, r, gym.ID)
	if !ok {
		return
	}

	ctx := r.Context()
	var errs error
	errs = multierr.Append(errs, h.attendance.DeleteByMember(ctx, member.ID))
	errs = multierr.Append(errs, h.payments.DeleteByMember(ctx, member.ID))
	errs = multierr.Append(errs, h.workouts.DeleteByMember(ctx, member.ID))
	errs = multierr.Append(errs, h.diets.DeleteByMember(ctx, member.ID))
	errs = multierr.Append(errs, h.progress.DeleteByMember(ctx, member.ID))
	errs = multierr.Append(errs, h.members.Delete(ctx, member.ID))
	if errs != nil {
		h.logger.Error("delete member cascade", "member_id", member.ID, "error", errs)
		writeError(w, http.StatusInternalServerError, "delete incomplete")
		return
	}

	h.cleanupOrphanedUser(r, member.UserID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) cleanupOrphanedUser(r *http.Request, userID string) {
	ctx := r.Context()
	remaining, err := h.members.CountByUserID(ctx, userID)
	if err != nil {
		h.logger.Error("count memberships", "user_id", userID, "error", err)
		return
	}
	if remaining > 0 {
		return
	}
	user, err := h.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	if user.Role != model.RoleTrainee && user.Role != model.RoleTrainer {
		return
	}
	if err := h.users.Delete(ctx, userID); err != nil {
		h.logger.Error("delete orphaned user", "user_id", userID, "error", err)
	}
}
