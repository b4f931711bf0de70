package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atinyakov/cyberchat/internal/llm"
	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
)

// ChatService relays chat transcripts to the upstream provider.
type ChatService struct {
	gateway llm.Gateway
}

// NewChatService constructs a ChatService on top of gateway.
func NewChatService(gateway llm.Gateway) *ChatService {
	return &ChatService{gateway: gateway}
}

// Complete prepends the tutor system prompt and asks the provider for the
// next assistant message. An empty provider is detected from the key and an
// empty model falls back to the provider default. Upstream failures are
// reported in-band with Success false.
func (s *ChatService) Complete(ctx context.Context, req models.ChatCompletionRequest) models.ChatCompletionResponse {
	p := req.Provider
	if strings.TrimSpace(string(p)) == "" {
		p = provider.Classify(req.APIKey).Provider
	}
	model := req.Model
	if model == "" {
		model = provider.DefaultModel(p)
	}

	reply, err := s.gateway.Complete(ctx, llm.Request{
		Provider: p,
		APIKey:   req.APIKey,
		Model:    model,
		System:   llm.SystemPrompt,
		Messages: req.Messages,
	})
	if err != nil {
		return models.ChatCompletionResponse{
			Success: false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Failed to get response: %v", err),
		}
	}
	return models.ChatCompletionResponse{Success: true, Message: reply, Provider: p, Model: model}
}
