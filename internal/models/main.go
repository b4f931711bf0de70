// Package models defines the core data structures shared by the chat client
// and the backend proxy: stored credentials, conversations and the wire
// payloads of the /api endpoints.
package models

import "time"

// Provider identifies the LLM vendor a credential belongs to.
type Provider string

const (
	// OpenAI keys start with "sk-".
	OpenAI Provider = "openai"
	// Anthropic keys start with "sk-ant-".
	Anthropic Provider = "anthropic"
	// Google keys start with "AIza".
	Google Provider = "google"
	// Unknown is assigned when no prefix matches.
	Unknown Provider = "unknown"
)

// Role is the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks replies returned by the provider.
	RoleAssistant Role = "assistant"
)

// Credential is a stored API key together with its detected provider and
// derived metadata. The JSON layout matches the "apiKeys" storage slot.
type Credential struct {
	// ID is assigned at creation and never reused.
	ID string `json:"id"`
	// Provider is fixed at creation time.
	Provider Provider `json:"provider"`
	// Name is the user-supplied label.
	Name string `json:"name"`
	// Secret is the raw key, stored in cleartext.
	Secret string `json:"key"`
	// MaskedSecret is the display form computed once at creation.
	MaskedSecret string `json:"maskedKey"`
	// SupportedModels is copied from the provider table at creation.
	SupportedModels []string `json:"models"`
	// IsActive is true for at most one credential.
	IsActive bool `json:"isActive"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// Supports reports whether model is one of the credential's models.
func (c Credential) Supports(model string) bool {
	for _, m := range c.SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

// Message is a single immutable entry of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only thread of messages.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TranscriptMessage is the view of a message sent to the backend.
type TranscriptMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// StatusCheck records a client heartbeat posted to /api/status.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}
