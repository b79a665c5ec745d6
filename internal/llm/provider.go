package llm

import (
	"context"
	"strings"
	"time"
)

// Provider is the text-generation capability consumed by the content
// generators. Implementations are treated as unreliable: any error from
// Complete makes the caller fall back to its deterministic templates.
type Provider interface {
	// Complete sends one system/user prompt pair and returns the raw
	// completion text.
	Complete(ctx context.Context, system string, user string) (string, error)

	// ModelID returns the model identifier used by this provider.
	ModelID() string
}

// Config holds provider configuration. It is passed explicitly into the
// generator services so they stay testable without environment mutation.
type Config struct {
	// Provider selects the implementation. Values: "openai", "mock", "".
	// Empty disables generation entirely (template fallback only).
	Provider string

	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional override for OpenRouter-style compatible APIs.

	// Timeout bounds a single completion call. Default: 30s.
	Timeout time.Duration

	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		Timeout:     30 * time.Second,
		Temperature: 0.7,
		MaxTokens:   2000,
	}
}

// NewProvider creates a Provider from configuration. It returns (nil, nil)
// when generation is disabled; callers must treat a nil Provider as
// "always fall back".
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, &ErrUnknownProvider{Name: cfg.Provider}
	}
}

// ErrUnknownProvider is returned for an unrecognized provider name.
type ErrUnknownProvider struct {
	Name string
}

func (e *ErrUnknownProvider) Error() string {
	return "unknown llm provider: " + e.Name
}

// CleanResponse strips markdown fences and surrounding noise that models
// sometimes wrap around JSON answers, so the structural parse sees only the
// payload.
func CleanResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
