package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/cyberchat/internal/middleware"
	"github.com/atinyakov/cyberchat/internal/models"
	handler "github.com/atinyakov/cyberchat/internal/server/handler/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeKeyService records calls and returns preconfigured results.
type fakeKeyService struct {
	validated   bool
	gotProvider models.Provider
	valid       models.ValidateKeyResponse
}

func (f *fakeKeyService) Detect(apiKey string) models.DetectKeyResponse {
	if strings.HasPrefix(apiKey, "sk-") {
		return models.DetectKeyResponse{Provider: models.OpenAI, Models: []string{"gpt-4o"}, IsValid: true}
	}
	return models.DetectKeyResponse{Provider: models.Unknown, Models: []string{}, IsValid: false}
}

func (f *fakeKeyService) Validate(_ context.Context, _ string, p models.Provider) models.ValidateKeyResponse {
	f.validated = true
	f.gotProvider = p
	res := f.valid
	res.Provider = p
	return res
}

type fakeChatService struct {
	called bool
	got    models.ChatCompletionRequest
	resp   models.ChatCompletionResponse
}

func (f *fakeChatService) Complete(_ context.Context, req models.ChatCompletionRequest) models.ChatCompletionResponse {
	f.called = true
	f.got = req
	return f.resp
}

type fakeStatusService struct {
	checks    []models.StatusCheck
	createErr error
	listErr   error
}

func (f *fakeStatusService) Create(_ context.Context, name string) (models.StatusCheck, error) {
	if f.createErr != nil {
		return models.StatusCheck{}, f.createErr
	}
	c := models.StatusCheck{ID: fmt.Sprint(len(f.checks) + 1), ClientName: name}
	f.checks = append(f.checks, c)
	return c, nil
}

func (f *fakeStatusService) List(context.Context) ([]models.StatusCheck, error) {
	return f.checks, f.listErr
}

type fixture struct {
	keys   *fakeKeyService
	chat   *fakeChatService
	status *fakeStatusService
	router http.Handler
}

func newFixture(withStatus bool, limiter *middleware.RateLimiter) *fixture {
	f := &fixture{
		keys:   &fakeKeyService{valid: models.ValidateKeyResponse{IsValid: true}},
		chat:   &fakeChatService{resp: models.ChatCompletionResponse{Success: true, Message: "reply"}},
		status: &fakeStatusService{},
	}
	var sh *handler.StatusHandler
	if withStatus {
		sh = &handler.StatusHandler{StatusService: f.status}
	}
	f.router = handler.NewRouter(
		&handler.KeyHandler{KeyService: f.keys},
		&handler.ChatHandler{ChatService: f.chat},
		sh, limiter, zap.NewNop(),
	)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	w := newFixture(false, nil).do(http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"CyberAI Backend - BYOK Cybersecurity Assistant"}`, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestDetect(t *testing.T) {
	f := newFixture(false, nil)

	w := f.do(http.MethodPost, "/api/keys/detect", `{"api_key":"sk-abc1234567"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"provider":"openai","models":["gpt-4o"],"is_valid":true}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/keys/detect", `{"api_key":"nope-1234567890"}`)
	assert.JSONEq(t, `{"provider":"unknown","models":[],"is_valid":false}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/keys/detect", `not-json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate(t *testing.T) {
	t.Run("provider from body", func(t *testing.T) {
		f := newFixture(false, nil)
		w := f.do(http.MethodPost, "/api/keys/validate", `{"api_key":"sk-ant-x","provider":"anthropic"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.Anthropic, f.keys.gotProvider)
		assert.JSONEq(t, `{"is_valid":true,"provider":"anthropic","error":null}`, w.Body.String())
	})

	t.Run("provider detected from key", func(t *testing.T) {
		f := newFixture(false, nil)
		f.do(http.MethodPost, "/api/keys/validate", `{"api_key":"AIzaSyD-1234567890"}`)
		assert.Equal(t, models.Google, f.keys.gotProvider)
	})

	t.Run("rejected key is still 200", func(t *testing.T) {
		f := newFixture(false, nil)
		msg := "invalid api key"
		f.keys.valid = models.ValidateKeyResponse{IsValid: false, Error: &msg}
		w := f.do(http.MethodPost, "/api/keys/validate", `{"api_key":"sk-bad","provider":"openai"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"is_valid":false,"provider":"openai","error":"invalid api key"}`, w.Body.String())
	})

	t.Run("missing key", func(t *testing.T) {
		f := newFixture(false, nil)
		w := f.do(http.MethodPost, "/api/keys/validate", `{"provider":"openai"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, f.keys.validated)
	})
}

func TestChatCompletions(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantCalled bool
	}{
		{
			name:       "missing api key",
			body:       `{"messages":[{"role":"user","content":"hi"}],"provider":"openai","model":"gpt-4o"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"API key is required"}`,
		},
		{
			name:       "missing messages",
			body:       `{"messages":[],"api_key":"sk-abc1234567","provider":"openai","model":"gpt-4o"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"Messages are required"}`,
		},
		{
			name:       "malformed body",
			body:       `{"messages":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"invalid request body"}`,
		},
		{
			name:       "success",
			body:       `{"messages":[{"role":"user","content":"hi"}],"api_key":"sk-abc1234567","provider":"openai","model":"gpt-4o","session_id":"c1"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"message":"reply"}`,
			wantCalled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false, nil)
			w := f.do(http.MethodPost, "/api/chat/completions", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantCalled, f.chat.called)
		})
	}
}

func TestChatCompletions_PassesRequestThrough(t *testing.T) {
	f := newFixture(false, nil)
	f.do(http.MethodPost, "/api/chat/completions",
		`{"messages":[{"role":"user","content":"hi","timestamp":"2025-01-01T00:00:00Z"}],"api_key":"sk-abc1234567","provider":"openai","model":"gpt-4o","session_id":"c1"}`)

	require.True(t, f.chat.called)
	assert.Equal(t, "c1", f.chat.got.SessionID)
	assert.Equal(t, models.OpenAI, f.chat.got.Provider)
	require.Len(t, f.chat.got.Messages, 1)
	assert.Equal(t, models.RoleUser, f.chat.got.Messages[0].Role)
}

func TestChatCompletions_UpstreamFailureIsInBand(t *testing.T) {
	f := newFixture(false, nil)
	f.chat.resp = models.ChatCompletionResponse{Success: false, Error: "boom", Message: "Failed to get response: boom"}
	w := f.do(http.MethodPost, "/api/chat/completions", `{"messages":[{"role":"user","content":"hi"}],"api_key":"k"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Error)
}

func TestRouter_RejectsNonJSON(t *testing.T) {
	f := newFixture(false, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/keys/detect", strings.NewReader("api_key=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_RateLimitsUpstreamCalls(t *testing.T) {
	f := newFixture(false, middleware.NewRateLimiter(0.001, 1))
	body := `{"messages":[{"role":"user","content":"hi"}],"api_key":"k"}`

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/chat/completions", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/chat/completions", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/keys/validate", `{"api_key":"k"}`).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/keys/detect", `{"api_key":"k"}`).Code, "detection is not limited")
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture(false, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat/completions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatus(t *testing.T) {
	f := newFixture(true, nil)

	w := f.do(http.MethodPost, "/api/status", `{"client_name":"web"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"1","client_name":"web","timestamp":"0001-01-01T00:00:00Z"}`, w.Body.String())

	w = f.do(http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var checks []models.StatusCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checks))
	assert.Len(t, checks, 1)
}

func TestStatus_Errors(t *testing.T) {
	f := newFixture(true, nil)

	f.status.createErr = fmt.Errorf("%w: client_name is required", models.ErrValidation)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/status", `{"client_name":""}`).Code)

	f.status.createErr = errors.New("db down")
	w := f.do(http.MethodPost, "/api/status", `{"client_name":"web"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")

	f.status.listErr = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/status", "").Code)
}

func TestStatus_NotMountedWithoutDatabase(t *testing.T) {
	f := newFixture(false, nil)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/status", "").Code)
}
