// Package llm sends chat transcripts to the upstream AI providers using the
// caller's own API key.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"go.uber.org/zap"
)

// SystemPrompt is prepended to every chat completion.
const SystemPrompt = `You are a highly knowledgeable cybersecurity expert and ethical hacking instructor. Your purpose is to educate users about:

1. Cybersecurity concepts and best practices
2. Vulnerability identification and exploitation techniques (for educational purposes only)
3. Penetration testing methodologies
4. Security tools and their usage
5. OWASP Top 10 and common vulnerabilities
6. Network security, web application security, and system hardening
7. Real-world attack scenarios and defensive strategies

You help users learn about:
- SQL Injection, XSS, CSRF, and other web vulnerabilities
- Network scanning and reconnaissance
- Privilege escalation techniques
- Cryptography and secure communication
- Malware analysis and reverse engineering
- Security compliance and frameworks (NIST, ISO 27001, etc.)

IMPORTANT:
- Always emphasize ethical hacking and legal boundaries
- Provide educational explanations with practical examples
- Include defensive measures alongside attack techniques
- Support learners preparing for certifications (CEH, OSCP, etc.)
- Answer questions about real hacking scenarios for educational purposes

Be thorough, technical, and educational in your responses.`

// ValidationPrompt is the system prompt of key validation probes.
const ValidationPrompt = "You are a helpful assistant."

const (
	// DefaultMaxTokens caps replies for providers that require a limit.
	DefaultMaxTokens = 4096

	maxResponseSize = 10 << 20
)

var (
	// ErrUnsupportedProvider is returned for providers without an adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrEmptyReply is returned when the provider answered without text.
	ErrEmptyReply = errors.New("provider returned an empty reply")
)

// Request is one completion call.
type Request struct {
	Provider  models.Provider
	APIKey    string
	Model     string
	System    string
	Messages  []models.TranscriptMessage
	MaxTokens int
}

// Gateway completes chat transcripts.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// UpstreamError is a non-2xx answer of a provider.
type UpstreamError struct {
	Provider models.Provider
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
}

// Router dispatches requests to the adapter of their provider.
type Router struct {
	adapters map[models.Provider]Gateway
	timeout  time.Duration
	log      *zap.Logger
}

// Endpoints are the upstream base URLs.
type Endpoints struct {
	OpenAI    string
	Anthropic string
	Google    string
}

// NewRouter wires the three provider adapters on top of hc.
func NewRouter(hc *http.Client, ep Endpoints, timeout time.Duration, log *zap.Logger) *Router {
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		adapters: map[models.Provider]Gateway{
			models.OpenAI:    &OpenAI{BaseURL: ep.OpenAI, HTTP: hc},
			models.Anthropic: &Anthropic{BaseURL: ep.Anthropic, HTTP: hc},
			models.Google:    &Gemini{BaseURL: ep.Google, HTTP: hc},
		},
		timeout: timeout,
		log:     log,
	}
}

// Complete implements Gateway.
func (r *Router) Complete(ctx context.Context, req Request) (string, error) {
	adapter, ok := r.adapters[req.Provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, req.Provider)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := adapter.Complete(ctx, req)
	if err != nil {
		r.log.Warn("upstream completion failed",
			zap.String("provider", string(req.Provider)),
			zap.String("model", req.Model),
			zap.Error(err),
		)
		return "", err
	}
	r.log.Info("upstream completion",
		zap.String("provider", string(req.Provider)),
		zap.String("model", req.Model),
		zap.Duration("took", time.Since(start)),
	)
	return reply, nil
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// postJSON sends body to url with headers and decodes a 2xx answer into out.
func postJSON(ctx context.Context, hc httpDoer, p models.Provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Provider: p, Status: resp.StatusCode, Message: upstreamMessage(data, resp.StatusCode)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", p, err)
	}
	return nil
}

// upstreamMessage extracts error.message, the shape shared by all three
// providers, falling back to the raw body.
func upstreamMessage(data []byte, status int) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return http.StatusText(status)
}
