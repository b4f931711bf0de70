// Package config provides functionality for managing configuration options
// for the server using command-line flags, environment variables and an
// optional JSON or YAML config file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default upstream endpoints.
const (
	DefaultOpenAIURL    = "https://api.openai.com/v1"
	DefaultAnthropicURL = "https://api.anthropic.com/v1"
	DefaultGoogleURL    = "https://generativelanguage.googleapis.com/v1beta"
)

// Options holds the configuration values for the server.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the Postgres connection string. Status checks are
	// disabled when it is empty.
	DatabaseDSN string

	// Config is the path to the config file.
	Config string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// LogLevel is the zap level name.
	LogLevel string

	// Upstream provider base URLs.
	OpenAIURL    string
	AnthropicURL string
	GoogleURL    string

	// RequestTimeout bounds a single upstream provider call.
	RequestTimeout time.Duration

	// RateLimit is the sustained number of completion and validation
	// requests per second allowed for one client, RateBurst its bucket size.
	RateLimit float64
	RateBurst int

	// StatusRetention is how long status checks are kept.
	StatusRetention time.Duration
}

// fileOptions is the on-disk shape of Options. Durations are strings such
// as "90s".
type fileOptions struct {
	Addr            *string  `json:"address" yaml:"address"`
	DatabaseDSN     *string  `json:"database_dsn" yaml:"database_dsn"`
	TLSCert         *string  `json:"tls_cert" yaml:"tls_cert"`
	TLSKey          *string  `json:"tls_key" yaml:"tls_key"`
	LogLevel        *string  `json:"log_level" yaml:"log_level"`
	OpenAIURL       *string  `json:"openai_url" yaml:"openai_url"`
	AnthropicURL    *string  `json:"anthropic_url" yaml:"anthropic_url"`
	GoogleURL       *string  `json:"google_url" yaml:"google_url"`
	RequestTimeout  *string  `json:"request_timeout" yaml:"request_timeout"`
	RateLimit       *float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst       *int     `json:"rate_burst" yaml:"rate_burst"`
	StatusRetention *string  `json:"status_retention" yaml:"status_retention"`
}

// Parse reads the process arguments and environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:], os.LookupEnv)
}

// ParseArgs builds Options from args and the environment reachable through
// lookup. Precedence, lowest first: defaults, config file, flags, environment.
func ParseArgs(args []string, lookup func(string) (string, bool)) (*Options, error) {
	opts := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.Addr, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&opts.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&opts.TLSKey, "tls-key", "", "TLS key file")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&opts.OpenAIURL, "openai-url", DefaultOpenAIURL, "OpenAI API base URL")
	fs.StringVar(&opts.AnthropicURL, "anthropic-url", DefaultAnthropicURL, "Anthropic API base URL")
	fs.StringVar(&opts.GoogleURL, "google-url", DefaultGoogleURL, "Google Generative Language API base URL")
	fs.DurationVar(&opts.RequestTimeout, "timeout", 25*time.Second, "upstream request timeout")
	fs.Float64Var(&opts.RateLimit, "rate", 2, "completion requests per second per client")
	fs.IntVar(&opts.RateBurst, "burst", 10, "completion request burst per client")
	fs.DurationVar(&opts.StatusRetention, "status-retention", 30*24*time.Hour, "status check retention")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if configPath, ok := lookup("CONFIG"); ok && configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		file, err := readFile(opts.Config)
		if err != nil {
			return nil, err
		}
		if file != nil {
			set := make(map[string]bool)
			fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
			if err := file.apply(opts, set); err != nil {
				return nil, fmt.Errorf("config file %s: %w", opts.Config, err)
			}
		}
	}

	if v, ok := lookup("SERVER_ADDRESS"); ok && v != "" {
		opts.Addr = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		opts.DatabaseDSN = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		opts.LogLevel = v
	}

	if opts.RateLimit <= 0 || opts.RateBurst <= 0 {
		return nil, errors.New("rate and burst must be positive")
	}
	return opts, nil
}

// readFile decodes the config file at path. A missing file yields nil.
func readFile(path string) (*fileOptions, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error while reading config file: %w", err)
	}

	var file fileOptions
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("error while parsing config file: %w", err)
	}
	return &file, nil
}

// apply copies every value present in f to opts unless the matching flag
// was given on the command line.
func (f *fileOptions) apply(opts *Options, set map[string]bool) error {
	str := func(flagName string, dst *string, src *string) {
		if src != nil && !set[flagName] {
			*dst = *src
		}
	}
	dur := func(flagName string, dst *time.Duration, src *string) error {
		if src == nil || set[flagName] {
			return nil
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return fmt.Errorf("%s: %w", flagName, err)
		}
		*dst = d
		return nil
	}

	str("a", &opts.Addr, f.Addr)
	str("d", &opts.DatabaseDSN, f.DatabaseDSN)
	str("tls-cert", &opts.TLSCert, f.TLSCert)
	str("tls-key", &opts.TLSKey, f.TLSKey)
	str("log-level", &opts.LogLevel, f.LogLevel)
	str("openai-url", &opts.OpenAIURL, f.OpenAIURL)
	str("anthropic-url", &opts.AnthropicURL, f.AnthropicURL)
	str("google-url", &opts.GoogleURL, f.GoogleURL)
	if f.RateLimit != nil && !set["rate"] {
		opts.RateLimit = *f.RateLimit
	}
	if f.RateBurst != nil && !set["burst"] {
		opts.RateBurst = *f.RateBurst
	}
	if err := dur("timeout", &opts.RequestTimeout, f.RequestTimeout); err != nil {
		return err
	}
	return dur("status-retention", &opts.StatusRetention, f.StatusRetention)
}
