package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
)

// KeyService defines the key operations required by the KeyHandler.
type KeyService interface {
	// Detect classifies an API key by its prefix.
	Detect(apiKey string) models.DetectKeyResponse
	// Validate probes the provider with the key. Failures are in-band.
	Validate(ctx context.Context, apiKey string, p models.Provider) models.ValidateKeyResponse
}

// KeyHandler handles key detection and validation requests.
type KeyHandler struct {
	KeyService KeyService
}

// Detect handles POST /api/keys/detect.
func (h *KeyHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req models.DetectKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.KeyService.Detect(req.APIKey))
}

// Validate handles POST /api/keys/validate. The answer is 200 whether or not
// the provider accepted the key. A missing provider is detected from the key.
func (h *KeyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		writeDetail(w, http.StatusBadRequest, "API key is required")
		return
	}

	p := provider.Parse(string(req.Provider))
	if p == models.Unknown {
		p = provider.Classify(req.APIKey).Provider
	}
	writeJSON(w, http.StatusOK, h.KeyService.Validate(r.Context(), req.APIKey, p))
}
