// Package factory constructs llm.Client instances for the configured
// completion provider.
package factory

import (
	"fmt"

	"intakebot/pkg/llm"
	"intakebot/pkg/llm/internal/llmimpl/anthropic"
	"intakebot/pkg/llm/internal/llmimpl/google"
	"intakebot/pkg/llm/internal/llmimpl/ollama"
	"intakebot/pkg/llm/internal/llmimpl/openaiofficial"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Default models per provider, used when the config leaves the model empty.
var defaultModels = map[string]string{ //nolint:gochecknoglobals // Static provider defaults
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderGoogle:    "gemini-2.0-flash",
	ProviderOllama:    "llama3.1",
}

// Options configures client construction.
type Options struct {
	Provider string
	Model    string
	APIKey   string // Unused for ollama
	Host     string // Ollama server URL; ignored for hosted providers
}

// NewClient builds an llm.Client for the given provider.
func NewClient(opts Options) (llm.Client, error) {
	model := opts.Model
	if model == "" {
		model = defaultModels[opts.Provider]
	}

	switch opts.Provider {
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openaiofficial.NewClient(opts.APIKey, model), nil
	case ProviderAnthropic:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.NewClient(opts.APIKey, model), nil
	case ProviderGoogle:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("google provider requires an API key")
		}
		return google.NewClient(opts.APIKey, model), nil
	case ProviderOllama:
		host := opts.Host
		if host == "" {
			host = "http://localhost:11434"
		}
		return ollama.NewClient(host, model), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", opts.Provider)
	}
}
