package llm

import (
	"context"
	"net/url"
	"strings"

	"github.com/atinyakov/cyberchat/internal/models"
)

// Gemini is the Generative Language generateContent adapter.
type Gemini struct {
	BaseURL string
	HTTP    httpDoer
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete implements Gateway.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	var body geminiRequest
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens

	endpoint := strings.TrimRight(g.BaseURL, "/") + "/models/" + url.PathEscape(req.Model) + ":generateContent"
	var out geminiResponse
	err := postJSON(ctx, g.HTTP, models.Google, endpoint,
		map[string]string{"x-goog-api-key": req.APIKey}, body, &out)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}
