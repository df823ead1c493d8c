package handler

import (
	"log/slog"
	"net/http"

	"github.com/fitdesert/fitdesert/internal/backup"
	"github.com/fitdesert/fitdesert/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backups: bs, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	latest, err := h.backups.Latest(r.Context())
	if err != nil {
		h.logger.Error("latest backup lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"configured": h.manager.Configured(),
		"latest":     latest,
	})
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Configured() {
		writeError(w, http.StatusServiceUnavailable, "backups not configured")
		return
	}

	record, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}
