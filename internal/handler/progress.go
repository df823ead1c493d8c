package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

type ProgressHandler struct {
	progress *store.ProgressStore
	members  *store.MemberStore
	logger   *slog.Logger
}

func NewProgressHandler(ps *store.ProgressStore, ms *store.MemberStore, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{progress: ps, members: ms, logger: logger}
}

func (h *ProgressHandler) membership(w http.ResponseWriter, r *http.Request) (*model.Member, bool) {
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

func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	member, ok := h.membership(w, r)
	if !ok {
		return
	}

	var req struct {
		Weight            *float64           `json:"weight"`
		BodyFatPercentage *float64           `json:"body_fat_percentage"`
		Measurements      map[string]float64 `json:"measurements"`
		Photos            []string           `json:"photos"`
		Notes             *string            `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Weight == nil && req.BodyFatPercentage == nil && len(req.Measurements) == 0 &&
		len(req.Photos) == 0 && req.Notes == nil {
		writeError(w, http.StatusBadRequest, "log at least one field")
		return
	}

	log, err := h.progress.Create(r.Context(), store.NewProgressLog{
		MemberID:          member.ID,
		GymID:             member.GymID,
		Weight:            req.Weight,
		BodyFatPercentage: req.BodyFatPercentage,
		Measurements:      req.Measurements,
		Photos:            req.Photos,
		Notes:             req.Notes,
	})
	if err != nil {
		h.logger.Error("create progress log", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (h *ProgressHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	member, ok := h.membership(w, r)
	if !ok {
		return
	}

	logs, err := h.progress.ListByMember(r.Context(), member.ID, 50)
	if err != nil {
		h.logger.Error("list progress logs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if logs == nil {
		logs = []*model.ProgressLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
