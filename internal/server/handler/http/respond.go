// Package http provides the HTTP handlers and router of the backend proxy.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/cyberchat/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorDetail{Detail: detail})
}

// RootMessage is returned by GET /api/.
const RootMessage = "CyberAI Backend - BYOK Cybersecurity Assistant"

// Root handles GET /api/.
func Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}
