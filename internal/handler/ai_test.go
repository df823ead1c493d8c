package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitdesert/fitdesert/internal/ai"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

func TestChatNotConfigured(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "trainee@example.com", model.RoleTrainee)
	h := NewAIHandler(store.NewChatStore(db), ai.NewClient("", ""), discard())

	rr := httptest.NewRecorder()
	h.Chat(rr, authedRequest(t, http.MethodPost, "/api/ai/chat", map[string]string{
		"message": "suggest a warmup",
	}, user))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestChatHistoryEmpty(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "trainee@example.com", model.RoleTrainee)
	h := NewAIHandler(store.NewChatStore(db), ai.NewClient("", ""), discard())

	rr := httptest.NewRecorder()
	h.History(rr, authedRequest(t, http.MethodGet, "/api/ai/chat-history", nil, user))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var messages []*model.ChatMessage
	decodeBody(t, rr, &messages)
	if len(messages) != 0 {
		t.Errorf("messages = %d, want 0", len(messages))
	}
}

func TestChatHistoryReturnsStoredMessages(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db, "trainee@example.com", model.RoleTrainee)
	cs := store.NewChatStore(db)
	h := NewAIHandler(cs, ai.NewClient("", ""), discard())

	if _, err := cs.Create(t.Context(), user.ID, "user", "how much protein?"); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if _, err := cs.Create(t.Context(), user.ID, "assistant", "around 1.6g per kg"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	rr := httptest.NewRecorder()
	h.History(rr, authedRequest(t, http.MethodGet, "/api/ai/chat-history", nil, user))
	var messages []*model.ChatMessage
	decodeBody(t, rr, &messages)
	if len(messages) != 2 {
		t.Errorf("messages = %d, want 2", len(messages))
	}
}
