// Package config provides configuration loading and validation for the
// intake bot. Settings come from a YAML file with env overrides for
// credentials; secrets can additionally live in an encrypted secrets file
// (see secrets.go). Credentials the process cannot run without are
// validated at load time: a missing required token refuses startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Env variable names for credentials.
const (
	// EnvAPIToken authenticates transport adapters to the webhook API.
	EnvAPIToken = "INTAKE_API_TOKEN"

	// Completion provider keys, one per hosted provider.
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"

	// EnvWhatsAppToken authorizes the notification sink.
	EnvWhatsAppToken = "WHATSAPP_API_TOKEN"
)

// Config is the process configuration, loaded once at startup.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Completion CompletionConfig `yaml:"completion"`
	Notify     NotifyConfig     `yaml:"notify"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Flow       FlowConfig       `yaml:"flow"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // default ":8000"
}

// DatabaseConfig configures the submissions store.
type DatabaseConfig struct {
	Path string `yaml:"path"` // default "intakebot.db"
}

// CompletionConfig selects the completion provider for the knowledge
// responder. Provider "none" disables the model fallback entirely.
type CompletionConfig struct {
	Provider string `yaml:"provider"` // openai | anthropic | google | ollama | none
	Model    string `yaml:"model"`    // empty uses the provider default
	Host     string `yaml:"host"`     // ollama server URL
}

// NotifyConfig configures outbound notification sinks. Empty URLs disable
// the corresponding sink.
type NotifyConfig struct {
	WhatsAppAPIURL string `yaml:"whatsapp_api_url"`
	WebhookURL     string `yaml:"webhook_url"`
}

// KnowledgeConfig points at an optional knowledge base file; empty uses the
// built-in entries.
type KnowledgeConfig struct {
	File string `yaml:"file"`
}

// FlowConfig tunes engine policies.
type FlowConfig struct {
	// RepromptOnMismatch re-sends the current prompt on mismatched input
	// instead of the silent no-op.
	RepromptOnMismatch bool `yaml:"reprompt_on_mismatch"`

	// SessionTTLMinutes expires idle sessions; 0 disables expiry.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

// PrometheusConfig points the operator status surface at a Prometheus
// server scraping this process. Optional.
type PrometheusConfig struct {
	URL string `yaml:"url"`
}

// SessionTTL returns the idle TTL as a duration (0 = disabled).
func (f FlowConfig) SessionTTL() time.Duration {
	return time.Duration(f.SessionTTLMinutes) * time.Minute
}

// Load reads configuration from path. A missing file yields defaults; a
// malformed file is an error. Credentials are validated separately by
// ValidateCredentials once secrets are loaded.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server:     ServerConfig{Addr: ":8000"},
		Database:   DatabaseConfig{Path: "intakebot.db"},
		Completion: CompletionConfig{Provider: "openai"},
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "intakebot.db"
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = "openai"
	}

	return cfg, nil
}

// CompletionKeyEnv returns the env/secret name holding the configured
// provider's API key, or "" when the provider needs none.
func (c CompletionConfig) CompletionKeyEnv() string {
	switch c.Provider {
	case "openai":
		return EnvOpenAIKey
	case "anthropic":
		return EnvAnthropicKey
	case "google":
		return EnvGoogleKey
	default:
		return "" // ollama and none need no key
	}
}

// ValidateCredentials checks that every credential the configuration
// requires is available. Called after secrets are loaded; a failure here is
// fatal at startup.
func (c *Config) ValidateCredentials() error {
	if _, err := GetSecret(EnvAPIToken); err != nil {
		return fmt.Errorf("required credential %s is not set: %w", EnvAPIToken, err)
	}

	if keyEnv := c.Completion.CompletionKeyEnv(); keyEnv != "" {
		if _, err := GetSecret(keyEnv); err != nil {
			return fmt.Errorf("completion provider %q requires %s: %w", c.Completion.Provider, keyEnv, err)
		}
	}

	// The notification sink degrades to logged drops when unconfigured, so
	// its token is only required when an API URL is set.
	if c.Notify.WhatsAppAPIURL != "" {
		if _, err := GetSecret(EnvWhatsAppToken); err != nil {
			return fmt.Errorf("notify.whatsapp_api_url is set but %s is not: %w", EnvWhatsAppToken, err)
		}
	}

	return nil
}
