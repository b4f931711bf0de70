// Package service provides the business logic of the backend proxy: key
// detection and validation, chat completions and status checks.
package service

import (
	"context"

	"github.com/atinyakov/cyberchat/internal/llm"
	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
)

// ProbeMessage is the single user message sent to validate a key.
const ProbeMessage = "Hi"

// KeyService detects and validates API keys.
type KeyService struct {
	// gateway reaches the upstream providers.
	gateway llm.Gateway
}

// NewKeyService constructs a KeyService on top of gateway.
func NewKeyService(gateway llm.Gateway) *KeyService {
	return &KeyService{gateway: gateway}
}

// Detect classifies apiKey. Unknown or too-short keys yield an invalid
// response with no models.
func (s *KeyService) Detect(apiKey string) models.DetectKeyResponse {
	c := provider.Classify(apiKey)
	if !c.Known() {
		return models.DetectKeyResponse{Provider: models.Unknown, Models: []string{}, IsValid: false}
	}
	return models.DetectKeyResponse{Provider: c.Provider, Models: c.Models, IsValid: true}
}

// Validate sends a one-message probe with the provider's default model.
// Failures are reported in the response, never as an error.
func (s *KeyService) Validate(ctx context.Context, apiKey string, p models.Provider) models.ValidateKeyResponse {
	_, err := s.gateway.Complete(ctx, llm.Request{
		Provider: p,
		APIKey:   apiKey,
		Model:    provider.DefaultModel(p),
		System:   llm.ValidationPrompt,
		Messages: []models.TranscriptMessage{{Role: models.RoleUser, Content: ProbeMessage}},
	})
	if err != nil {
		msg := err.Error()
		return models.ValidateKeyResponse{IsValid: false, Provider: p, Error: &msg}
	}
	return models.ValidateKeyResponse{IsValid: true, Provider: p}
}
