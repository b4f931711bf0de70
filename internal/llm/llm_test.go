package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/cyberchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var transcript = []models.TranscriptMessage{
	{Role: models.RoleUser, Content: "What is XSS?"},
	{Role: models.RoleAssistant, Content: "Cross-site scripting."},
	{Role: models.RoleUser, Content: "How do I prevent it?"},
}

// upstream starts a server that records the decoded body and answers with
// status and reply.
func upstream(t *testing.T, status int, reply string, check func(r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if check != nil {
			check(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func routerFor(srv *httptest.Server, timeout time.Duration) *Router {
	return NewRouter(srv.Client(), Endpoints{OpenAI: srv.URL, Anthropic: srv.URL, Google: srv.URL}, timeout, zap.NewNop())
}

func TestOpenAI_Complete(t *testing.T) {
	srv := upstream(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Escape output."}}]}`,
		func(r *http.Request, body map[string]any) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test-123456", r.Header.Get("Authorization"))
			assert.Equal(t, "gpt-4o", body["model"])
			msgs := body["messages"].([]any)
			require.Len(t, msgs, 4)
			first := msgs[0].(map[string]any)
			assert.Equal(t, "system", first["role"])
			assert.Equal(t, SystemPrompt, first["content"])
		})

	reply, err := routerFor(srv, time.Second).Complete(context.Background(), Request{
		Provider: models.OpenAI, APIKey: "sk-test-123456", Model: "gpt-4o",
		System: SystemPrompt, Messages: transcript,
	})
	require.NoError(t, err)
	assert.Equal(t, "Escape output.", reply)
}

func TestAnthropic_Complete(t *testing.T) {
	srv := upstream(t, http.StatusOK, `{"content":[{"type":"text","text":"Use "},{"type":"text","text":"CSP."}]}`,
		func(r *http.Request, body map[string]any) {
			assert.Equal(t, "/messages", r.URL.Path)
			assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
			assert.Equal(t, AnthropicVersion, r.Header.Get("anthropic-version"))
			assert.Equal(t, SystemPrompt, body["system"])
			assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])
			assert.Len(t, body["messages"], 3)
		})

	reply, err := routerFor(srv, time.Second).Complete(context.Background(), Request{
		Provider: models.Anthropic, APIKey: "sk-ant-test", Model: "claude-3-haiku-20240307",
		System: SystemPrompt, Messages: transcript,
	})
	require.NoError(t, err)
	assert.Equal(t, "Use CSP.", reply)
}

func TestGemini_Complete(t *testing.T) {
	srv := upstream(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Sanitize input."}]}}]}`,
		func(r *http.Request, body map[string]any) {
			assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
			assert.Equal(t, "AIza-test", r.Header.Get("x-goog-api-key"))
			assert.Empty(t, r.URL.Query().Get("key"))
			contents := body["contents"].([]any)
			require.Len(t, contents, 3)
			assert.Equal(t, "model", contents[1].(map[string]any)["role"])
			assert.NotNil(t, body["systemInstruction"])
		})

	reply, err := routerFor(srv, time.Second).Complete(context.Background(), Request{
		Provider: models.Google, APIKey: "AIza-test", Model: "gemini-1.5-flash",
		System: SystemPrompt, Messages: transcript,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sanitize input.", reply)
}

func TestRouter_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider models.Provider
		status   int
		body     string
		wantMsg  string
	}{
		{"openai bad key", models.OpenAI, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, "Incorrect API key provided"},
		{"anthropic overloaded", models.Anthropic, 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, "Overloaded"},
		{"gemini bad request", models.Google, http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, "API key not valid"},
		{"raw text", models.OpenAI, http.StatusBadGateway, `upstream down`, "upstream down"},
		{"empty body", models.OpenAI, http.StatusServiceUnavailable, ``, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstream(t, tt.status, tt.body, nil)
			_, err := routerFor(srv, time.Second).Complete(context.Background(), Request{
				Provider: tt.provider, APIKey: "k", Model: "m", Messages: transcript,
			})
			var ue *UpstreamError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.status, ue.Status)
			assert.Equal(t, tt.wantMsg, ue.Message)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRouter_EmptyReply(t *testing.T) {
	srv := upstream(t, http.StatusOK, `{"choices":[]}`, nil)
	_, err := routerFor(srv, time.Second).Complete(context.Background(), Request{
		Provider: models.OpenAI, APIKey: "k", Model: "m", Messages: transcript,
	})
	require.ErrorIs(t, err, ErrEmptyReply)
}

func TestRouter_UnsupportedProvider(t *testing.T) {
	r := NewRouter(nil, Endpoints{}, 0, nil)
	_, err := r.Complete(context.Background(), Request{Provider: models.Unknown})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestRouter_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := routerFor(srv, 50*time.Millisecond).Complete(context.Background(), Request{
		Provider: models.OpenAI, APIKey: "k", Model: "m", Messages: transcript,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
