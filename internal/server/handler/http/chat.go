package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/cyberchat/internal/models"
)

// ChatService defines the completion operation required by the ChatHandler.
type ChatService interface {
	Complete(ctx context.Context, req models.ChatCompletionRequest) models.ChatCompletionResponse
}

// ChatHandler handles chat completion requests.
type ChatHandler struct {
	ChatService ChatService
}

// Complete handles POST /api/chat/completions. Upstream failures are
// answered with 200 and success false.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeDetail(w, http.StatusBadRequest, "API key is required")
		return
	}
	if len(req.Messages) == 0 {
		writeDetail(w, http.StatusBadRequest, "Messages are required")
		return
	}

	writeJSON(w, http.StatusOK, h.ChatService.Complete(r.Context(), req))
}
