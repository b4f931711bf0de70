package models

// DetectKeyRequest is the body of POST /api/keys/detect.
type DetectKeyRequest struct {
	APIKey string `json:"api_key"`
}

// DetectKeyResponse is returned by POST /api/keys/detect.
type DetectKeyResponse struct {
	Provider Provider `json:"provider"`
	Models   []string `json:"models"`
	IsValid  bool     `json:"is_valid"`
}

// ValidateKeyRequest is the body of POST /api/keys/validate.
type ValidateKeyRequest struct {
	APIKey   string   `json:"api_key"`
	Provider Provider `json:"provider"`
}

// ValidateKeyResponse is returned by POST /api/keys/validate.
type ValidateKeyResponse struct {
	IsValid  bool     `json:"is_valid"`
	Provider Provider `json:"provider"`
	Error    *string  `json:"error"`
}

// ChatCompletionRequest is the body of POST /api/chat/completions.
type ChatCompletionRequest struct {
	Messages  []TranscriptMessage `json:"messages"`
	APIKey    string              `json:"api_key"`
	Provider  Provider            `json:"provider"`
	Model     string              `json:"model"`
	SessionID string              `json:"session_id,omitempty"`
}

// ChatCompletionResponse is returned by POST /api/chat/completions.
type ChatCompletionResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
	Provider Provider `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// StatusCheckCreate is the body of POST /api/status.
type StatusCheckCreate struct {
	ClientName string `json:"client_name"`
}

// ErrorDetail is the body of 4xx responses.
type ErrorDetail struct {
	Detail string `json:"detail"`
}
