// Package provider maps raw API keys to their vendor and the static list of
// models each vendor offers.
package provider

import (
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/cyberchat/internal/models"
)

// MinKeyLength is the shortest input Classify will attempt to classify.
const MinKeyLength = 10

// Classification is the outcome of Classify.
type Classification struct {
	// Provider is the detected vendor, or models.Unknown.
	Provider models.Provider
	// Models is the ordered model list for Provider.
	Models []string
	// Pending is set when the input is too short to classify. It is distinct
	// from an Unknown provider.
	Pending bool
}

// Known reports whether the classification names a real provider.
func (c Classification) Known() bool {
	return !c.Pending && c.Provider != models.Unknown && c.Provider != ""
}

var providerModels = map[models.Provider][]string{
	models.OpenAI: {"gpt-4o", "gpt-4-turbo", "gpt-4", "gpt-3.5-turbo", "gpt-4o-mini"},
	models.Anthropic: {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
		"claude-3-5-sonnet-20241022",
	},
	models.Google: {"gemini-pro", "gemini-1.5-pro", "gemini-1.5-flash", "gemini-2.0-flash"},
}

// defaultModels are the cheapest model per vendor, used for key validation.
var defaultModels = map[models.Provider]string{
	models.OpenAI:    "gpt-4o-mini",
	models.Anthropic: "claude-3-haiku-20240307",
	models.Google:    "gemini-1.5-flash",
}

// Classify detects the provider of secret by prefix.
// "sk-ant-" is tested before "sk-" so Anthropic keys are never taken for OpenAI.
func Classify(secret string) Classification {
	secret = strings.TrimSpace(secret)
	if utf8.RuneCountInString(secret) < MinKeyLength {
		return Classification{Pending: true, Models: []string{}}
	}

	p := models.Unknown
	switch {
	case strings.HasPrefix(secret, "sk-ant-"):
		p = models.Anthropic
	case strings.HasPrefix(secret, "sk-"):
		p = models.OpenAI
	case strings.HasPrefix(secret, "AIza"):
		p = models.Google
	}
	return Classification{Provider: p, Models: ModelsFor(p)}
}

// ModelsFor returns a copy of the model table row for p. Unknown providers
// yield an empty, non-nil slice.
func ModelsFor(p models.Provider) []string {
	row := providerModels[p]
	out := make([]string, len(row))
	copy(out, row)
	return out
}

// DefaultModel returns the model used to probe a key of provider p.
// Unknown providers fall back to the OpenAI default.
func DefaultModel(p models.Provider) string {
	if m, ok := defaultModels[p]; ok {
		return m
	}
	return defaultModels[models.OpenAI]
}

// Parse converts a provider name received over the wire.
func Parse(s string) models.Provider {
	switch p := models.Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case models.OpenAI, models.Anthropic, models.Google:
		return p
	default:
		return models.Unknown
	}
}
