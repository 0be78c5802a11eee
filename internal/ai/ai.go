// Package ai wraps the LLM providers used by the aggregation functions
// behind one small interface. OpenAI and DeepSeek go through go-openai
// (DeepSeek speaks the same wire protocol); Claude and Gemini are called
// over plain HTTPS.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Completer sends one system+user prompt pair and returns the raw text of
// the model's answer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Supported providers.
const (
	OpenAI   = "openai"
	Google   = "google"
	Claude   = "claude"
	DeepSeek = "deepseek"
)

// DefaultModels maps each provider to the model used when none is set.
var DefaultModels = map[string]string{
	OpenAI:   "gpt-4o-mini",
	Google:   "gemini-2.0-flash-lite",
	Claude:   "claude-3-haiku-20240307",
	DeepSeek: "deepseek-chat",
}

// Errors returned by New and the providers.
var (
	ErrUnknownProvider = errors.New("unknown AI provider")
	ErrMissingAPIKey   = errors.New("AI API key not configured")
	ErrEmptyResponse   = errors.New("AI provider returned an empty response")
)

// Config selects and parameterizes a provider. BaseURL and HTTPClient are
// optional overrides (self-hosted gateways, tests).
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DefaultModel returns the default model for provider, or "".
func DefaultModel(provider string) string {
	return DefaultModels[strings.ToLower(strings.TrimSpace(provider))]
}

// IsProvider reports whether p names a supported provider.
func IsProvider(p string) bool {
	_, ok := DefaultModels[p]
	return ok
}

// New builds the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if !IsProvider(cfg.Provider) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	switch cfg.Provider {
	case OpenAI, DeepSeek:
		return newOpenAICompatible(cfg), nil
	case Claude:
		return newAnthropic(cfg), nil
	default:
		return newGemini(cfg), nil
	}
}
