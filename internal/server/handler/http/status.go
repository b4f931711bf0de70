package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/cyberchat/internal/models"
	"go.uber.org/zap"
)

// StatusService defines the status check operations required by the
// StatusHandler.
type StatusService interface {
	Create(ctx context.Context, clientName string) (models.StatusCheck, error)
	List(ctx context.Context) ([]models.StatusCheck, error)
}

// StatusHandler handles client heartbeat requests.
type StatusHandler struct {
	StatusService StatusService
	Log           *zap.Logger
}

// Create handles POST /api/status.
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.StatusCheckCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := h.StatusService.Create(r.Context(), req.ClientName)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger().Error("failed to store status check", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// List handles GET /api/status.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	checks, err := h.StatusService.List(r.Context())
	if err != nil {
		h.logger().Error("failed to list status checks", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

func (h *StatusHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
