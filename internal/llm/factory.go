package llm

import (
	"errors"
	"fmt"
)

// Backend tags accepted by NewProvider.
const (
	BackendMock   = "mock"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// Config selects and parameterizes a backend. Resolved exactly once at
// process start; the rest of the process only sees the Provider interface.
type Config struct {
	Backend string
	APIKey  string
	BaseURL string
	Model   string
}

// NewProvider maps the configured backend tag to a concrete provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Backend {
	case BackendMock:
		return NewMockProvider(), nil
	case BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("openai API key is required")
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case BackendOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm backend: %q", cfg.Backend)
	}
}
