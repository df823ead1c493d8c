package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/qr"
	"github.com/fitdesert/fitdesert/internal/store"
	"github.com/fitdesert/fitdesert/internal/websocket"
)

const dateLayout = "2006-01-02"

type AttendanceHandler struct {
	attendance *store.AttendanceStore
	members    *store.MemberStore
	gyms       *store.GymStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAttendanceHandler(
	as *store.AttendanceStore,
	ms *store.MemberStore,
	gs *store.GymStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: as,
		members:    ms,
		gyms:       gs,
		hub:        hub,
		logger:     logger,
	}
}

func (h *AttendanceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Scan handles a scanned gym QR code. The first scan of the day checks
// the member in, the second checks them out, a third is rejected.
func (h *AttendanceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		QRData string `json:"qr_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	gymID, err := qr.ExtractGymID(req.QRData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unrecognized QR code")
		return
	}

	member, err := h.members.GetByUserAndGym(r.Context(), user.ID, gymID)
	if err != nil {
		h.logger.Error("membership lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "no membership at this gym")
		return
	}
	if member.Role == model.RoleTrainer {
		writeError(w, http.StatusForbidden, "trainers do not check in")
		return
	}

	now := time.Now().UTC()
	if member.MembershipExpiry.Before(now) {
		writeError(w, http.StatusForbidden, "membership expired")
		return
	}

	today := now.Format(dateLayout)
	existing, err := h.attendance.GetByMemberAndDate(r.Context(), member.ID, gymID, today)
	if err != nil {
		h.logger.Error("attendance lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch {
	case existing == nil:
		record, err := h.attendance.CheckIn(r.Context(), member.ID, gymID, now, today)
		if err != nil {
			h.logger.Error("check in", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		h.broadcast(websocket.CheckInMessage(gymID, member.ID, user.Name, now))
		writeJSON(w, http.StatusCreated, map[string]any{
			"action":     "check_in",
			"attendance": record,
		})

	case existing.CheckOutTime == nil:
		if err := h.attendance.SetCheckOut(r.Context(), existing.ID, now); err != nil {
			h.logger.Error("check out", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		existing.CheckOutTime = &now
		h.broadcast(websocket.CheckOutMessage(gymID, member.ID, user.Name, now))
		writeJSON(w, http.StatusOK, map[string]any{
			"action":     "check_out",
			"attendance": existing,
		})

	default:
		writeError(w, http.StatusConflict, "already checked out today")
	}
}

// Checkout closes today's open attendance record without a QR scan.
func (h *AttendanceHandler) Checkout(w http.ResponseWriter, r *http.Request) {
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

	now := time.Now().UTC()
	today := now.Format(dateLayout)
	existing, err := h.attendance.GetByMemberAndDate(r.Context(), member.ID, member.GymID, today)
	if err != nil {
		h.logger.Error("attendance lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "not checked in today")
		return
	}
	if existing.CheckOutTime != nil {
		writeError(w, http.StatusConflict, "already checked out today")
		return
	}

	if err := h.attendance.SetCheckOut(r.Context(), existing.ID, now); err != nil {
		h.logger.Error("check out", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	existing.CheckOutTime = &now
	h.broadcast(websocket.CheckOutMessage(member.GymID, member.ID, user.Name, now))

	writeJSON(w, http.StatusOK, map[string]any{
		"action":     "check_out",
		"attendance": existing,
	})
}

func (h *AttendanceHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
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

	records, err := h.attendance.ListByMember(r.Context(), member.ID, 30)
	if err != nil {
		h.logger.Error("list attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*model.Attendance{}
	}
	writeJSON(w, http.StatusOK, records)
}

// GymStats returns one day's attendance for the manager's gym plus a
// trailing-week visit count.
func (h *AttendanceHandler) GymStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	gym, err := h.gyms.GetByOwnerID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("owner gym lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if gym == nil {
		writeError(w, http.StatusNotFound, "no gym registered")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}
	dayStart, err := time.Parse(dateLayout, date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	records, err := h.attendance.ListByGymBetween(r.Context(), gym.ID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		h.logger.Error("list gym attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*model.Attendance{}
	}

	weekCount, err := h.attendance.CountByGymSince(r.Context(), gym.ID, time.Now().UTC().Add(-7*24*time.Hour))
	if err != nil {
		h.logger.Error("count week attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":       date,
		"records":    records,
		"count":      len(records),
		"week_count": weekCount,
	})
}
