package llm

import (
	"context"
	"strings"

	"github.com/atinyakov/cyberchat/internal/models"
)

// OpenAI is the Chat Completions adapter.
type OpenAI struct {
	BaseURL string
	HTTP    httpDoer
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements Gateway.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{Model: req.Model, MaxTokens: req.MaxTokens}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	var out openAIResponse
	err := postJSON(ctx, o.HTTP, models.OpenAI, strings.TrimRight(o.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + req.APIKey}, body, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
