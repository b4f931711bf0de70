// Package api is the HTTP client of the chat backend: key detection, key
// validation and chat completions.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/atinyakov/cyberchat/internal/provider"
	"go.uber.org/zap"
)

const (
	apiDetect      = "/api/keys/detect"
	apiValidate    = "/api/keys/validate"
	apiCompletions = "/api/chat/completions"

	// DefaultTimeout bounds every backend request.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 10 << 20
)

// Client talks to the backend proxy. It keeps no conversation state.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient builds an HTTP client that trusts the CA in caFile in
// addition to the system roots. An empty caFile yields a plain client.
func NewHTTPClient(caFile string) (*http.Client, error) {
	if caFile == "" {
		return &http.Client{}, nil
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    pool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport}, nil
}

// Complete sends the transcript to the completion endpoint and returns the
// assistant reply. Failures are *CompletionError values.
func (c *Client) Complete(
	ctx context.Context,
	transcript []models.TranscriptMessage,
	cred models.Credential,
	model, sessionID string,
) (string, error) {
	req := models.ChatCompletionRequest{
		Messages:  transcript,
		APIKey:    cred.Secret,
		Provider:  cred.Provider,
		Model:     model,
		SessionID: sessionID,
	}
	var resp models.ChatCompletionResponse
	if err := c.post(ctx, apiCompletions, req, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Message == "" {
		msg := resp.Error
		if msg == "" {
			msg = "Failed to get response from AI"
		}
		return "", &CompletionError{Kind: KindProvider, Message: msg}
	}
	c.log.Debug("completion received",
		zap.String("provider", string(cred.Provider)),
		zap.String("model", model),
		zap.String("key", cred.MaskedSecret),
	)
	return resp.Message, nil
}

// Detect asks the backend which provider a key belongs to.
func (c *Client) Detect(ctx context.Context, secret string) (provider.Classification, error) {
	var resp models.DetectKeyResponse
	if err := c.post(ctx, apiDetect, models.DetectKeyRequest{APIKey: secret}, &resp); err != nil {
		return provider.Classification{}, err
	}
	if !resp.IsValid || resp.Provider == "" {
		return provider.Classification{Provider: models.Unknown, Models: []string{}}, nil
	}
	ms := resp.Models
	if ms == nil {
		ms = []string{}
	}
	return provider.Classification{Provider: provider.Parse(string(resp.Provider)), Models: ms}, nil
}

// Validate asks the backend to probe the key with a minimal request.
func (c *Client) Validate(ctx context.Context, secret string, p models.Provider) (models.ValidateKeyResponse, error) {
	var resp models.ValidateKeyResponse
	err := c.post(ctx, apiValidate, models.ValidateKeyRequest{APIKey: secret, Provider: p}, &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return &CompletionError{Kind: KindConnection, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			c.log.Warn("backend request timed out", zap.String("path", path))
			return &CompletionError{Kind: KindTimeout, Err: err}
		}
		c.log.Warn("backend unreachable", zap.String("path", path), zap.Error(err))
		return &CompletionError{Kind: KindConnection, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if isTimeout(ctx, err) {
			return &CompletionError{Kind: KindTimeout, Err: err}
		}
		return &CompletionError{Kind: KindConnection, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &CompletionError{Kind: KindProvider, Message: errorMessage(resp.StatusCode, data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &CompletionError{Kind: KindProvider, Message: "invalid response: " + err.Error(), Err: err}
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// errorMessage extracts the backend's message from an error body: FastAPI
// style {"detail": ...}, {"error": ...}, or the raw text.
func errorMessage(status int, data []byte) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fmt.Sprintf("server error: %s", http.StatusText(status))
}
