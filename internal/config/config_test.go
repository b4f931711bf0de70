package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, env(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Addr)
	assert.Empty(t, opts.DatabaseDSN)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, DefaultOpenAIURL, opts.OpenAIURL)
	assert.Equal(t, DefaultAnthropicURL, opts.AnthropicURL)
	assert.Equal(t, DefaultGoogleURL, opts.GoogleURL)
	assert.Equal(t, 25*time.Second, opts.RequestTimeout)
	assert.Equal(t, 30*24*time.Hour, opts.StatusRetention)
	assert.Equal(t, 2.0, opts.RateLimit)
	assert.Equal(t, 10, opts.RateBurst)
}

func TestParseArgs_JSONFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"address": "0.0.0.0:9000",
		"database_dsn": "postgres://file",
		"request_timeout": "15s",
		"rate_burst": 3
	}`)

	opts, err := ParseArgs([]string{"-config", path}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", opts.Addr)
	assert.Equal(t, "postgres://file", opts.DatabaseDSN)
	assert.Equal(t, 15*time.Second, opts.RequestTimeout)
	assert.Equal(t, 3, opts.RateBurst)
}

func TestParseArgs_YAMLFile(t *testing.T) {
	path := writeConfig(t, "server.yaml", `
address: ":7000"
log_level: debug
openai_url: http://openai.local
status_retention: 48h
rate_limit: 0.5
`)

	opts, err := ParseArgs([]string{"-c", path}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, ":7000", opts.Addr)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "http://openai.local", opts.OpenAIURL)
	assert.Equal(t, 48*time.Hour, opts.StatusRetention)
	assert.Equal(t, 0.5, opts.RateLimit)
}

func TestParseArgs_Precedence(t *testing.T) {
	path := writeConfig(t, "config.json", `{"address": "file:1", "database_dsn": "file-dsn", "log_level": "warn"}`)

	opts, err := ParseArgs(
		[]string{"-a", "flag:2", "-d", "flag-dsn"},
		env(map[string]string{
			"CONFIG":         path,
			"SERVER_ADDRESS": "env:3",
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "env:3", opts.Addr, "environment wins over flags")
	assert.Equal(t, "flag-dsn", opts.DatabaseDSN, "flags win over the file")
	assert.Equal(t, "warn", opts.LogLevel, "file wins over defaults")
	assert.Equal(t, path, opts.Config)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"unknown flag", func(*testing.T) []string { return []string{"-nope"} }},
		{"malformed json", func(t *testing.T) []string {
			return []string{"-c", writeConfig(t, "bad.json", "{")}
		}},
		{"malformed yaml", func(t *testing.T) []string {
			return []string{"-c", writeConfig(t, "bad.yml", "address: [")}
		}},
		{"bad duration", func(t *testing.T) []string {
			return []string{"-c", writeConfig(t, "c.json", `{"request_timeout": "soon"}`)}
		}},
		{"zero burst", func(t *testing.T) []string {
			return []string{"-c", filepath.Join(t.TempDir(), "none.json"), "-burst", "0"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args(t), env(nil))
			require.Error(t, err)
		})
	}
}
