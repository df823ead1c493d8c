package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fitdesert/fitdesert/internal/ai"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

type AIHandler struct {
	chats  *store.ChatStore
	client *ai.Client
	logger *slog.Logger
}

func NewAIHandler(cs *store.ChatStore, client *ai.Client, logger *slog.Logger) *AIHandler {
	return &AIHandler{chats: cs, client: client, logger: logger}
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history, err := h.chats.ListByUser(r.Context(), user.ID, ai.HistoryLimit)
	if err != nil {
		h.logger.Error("load chat history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	reply, err := h.client.Ask(r.Context(), history, req.Message)
	if err != nil {
		h.logger.Error("assistant request", "error", err)
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}

	// Persist both sides only after a successful completion so a failed
	// request leaves the history untouched.
	if _, err := h.chats.Create(r.Context(), user.ID, "user", req.Message); err != nil {
		h.logger.Error("store user message", "error", err)
	}
	if _, err := h.chats.Create(r.Context(), user.ID, "assistant", reply); err != nil {
		h.logger.Error("store assistant message", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *AIHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	messages, err := h.chats.ListByUser(r.Context(), user.ID, 100)
	if err != nil {
		h.logger.Error("list chat history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if messages == nil {
		messages = []*model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}
