package llm

import (
	"context"
	"strings"

	"github.com/atinyakov/cyberchat/internal/models"
)

// AnthropicVersion is sent as the anthropic-version header.
const AnthropicVersion = "2023-06-01"

// Anthropic is the Messages API adapter.
type Anthropic struct {
	BaseURL string
	HTTP    httpDoer
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete implements Gateway.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{Model: req.Model, System: req.System, MaxTokens: req.MaxTokens}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	var out anthropicResponse
	err := postJSON(ctx, a.HTTP, models.Anthropic, strings.TrimRight(a.BaseURL, "/")+"/messages",
		map[string]string{
			"x-api-key":         req.APIKey,
			"anthropic-version": AnthropicVersion,
		}, body, &out)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}
