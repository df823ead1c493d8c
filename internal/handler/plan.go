package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

type PlanHandler struct {
	workouts *store.WorkoutPlanStore
	diets    *store.DietPlanStore
	members  *store.MemberStore
	logger   *slog.Logger
}

func NewPlanHandler(ws *store.WorkoutPlanStore, ds *store.DietPlanStore, ms *store.MemberStore, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{workouts: ws, diets: ds, members: ms, logger: logger}
}

// trainerAndTarget resolves the authenticated trainer's membership and
// the target member, checking both sit in the same gym.
func (h *PlanHandler) trainerAndTarget(w http.ResponseWriter, r *http.Request, memberID string) (trainer, target *model.Member, ok bool) {
	user, okUser := currentUser(w, r)
	if !okUser {
		return nil, nil, false
	}

	target, err := h.members.GetByID(r.Context(), memberID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return nil, nil, false
	}

	trainer, err = h.members.GetByUserAndGym(r.Context(), user.ID, target.GymID)
	if err != nil {
		h.logger.Error("trainer lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	if trainer == nil || trainer.Role != model.RoleTrainer {
		writeError(w, http.StatusForbidden, "only a trainer at this gym can assign plans")
		return nil, nil, false
	}
	return trainer, target, true
}

// ownMembership resolves the authenticated user's membership for the
// my-plan endpoints.
func (h *PlanHandler) ownMembership(w http.ResponseWriter, r *http.Request) (*model.Member, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, false
	}
	member, err := h.members.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("member lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "no membership found")
		return nil, false
	}
	return member, true
}

func (h *PlanHandler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID    string             `json:"member_id"`
		PlanName    string             `json:"plan_name"`
		WorkoutDays []model.WorkoutDay `json:"workout_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.PlanName = strings.TrimSpace(req.PlanName)
	if req.MemberID == "" || req.PlanName == "" || len(req.WorkoutDays) == 0 {
		writeError(w, http.StatusBadRequest, "member_id, plan_name and workout_days are required")
		return
	}

	trainer, target, ok := h.trainerAndTarget(w, r, req.MemberID)
	if !ok {
		return
	}

	// One plan per member; a new assignment replaces the old one.
	if err := h.workouts.DeleteByMember(r.Context(), target.ID); err != nil {
		h.logger.Error("replace workout plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	plan, err := h.workouts.Create(r.Context(), target.ID, trainer.ID, target.GymID, req.PlanName, req.WorkoutDays)
	if err != nil {
		h.logger.Error("create workout plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PlanHandler) MyWorkout(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownMembership(w, r)
	if !ok {
		return
	}

	plan, err := h.workouts.GetByMember(r.Context(), member.ID)
	if err != nil {
		h.logger.Error("get workout plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "no workout plan assigned")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *PlanHandler) CreateDiet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID      string       `json:"member_id"`
		PlanName      string       `json:"plan_name"`
		DailyMeals    []model.Meal `json:"daily_meals"`
		TotalCalories *int         `json:"total_calories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.PlanName = strings.TrimSpace(req.PlanName)
	if req.MemberID == "" || req.PlanName == "" || len(req.DailyMeals) == 0 {
		writeError(w, http.StatusBadRequest, "member_id, plan_name and daily_meals are required")
		return
	}

	// Derive the daily total from per-meal calories when not supplied.
	if req.TotalCalories == nil {
		total := 0
		counted := false
		for _, meal := range req.DailyMeals {
			if meal.Calories != nil {
				total += *meal.Calories
				counted = true
			}
		}
		if counted {
			req.TotalCalories = &total
		}
	}

	trainer, target, ok := h.trainerAndTarget(w, r, req.MemberID)
	if !ok {
		return
	}

	if err := h.diets.DeleteByMember(r.Context(), target.ID); err != nil {
		h.logger.Error("replace diet plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	plan, err := h.diets.Create(r.Context(), target.ID, trainer.ID, target.GymID, req.PlanName, req.DailyMeals, req.TotalCalories)
	if err != nil {
		h.logger.Error("create diet plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *PlanHandler) MyDiet(w http.ResponseWriter, r *http.Request) {
	member, ok := h.ownMembership(w, r)
	if !ok {
		return
	}

	plan, err := h.diets.GetByMember(r.Context(), member.ID)
	if err != nil {
		h.logger.Error("get diet plan", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "no diet plan assigned")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
