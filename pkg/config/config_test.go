package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "intakebot.db", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.False(t, cfg.Flow.RepromptOnMismatch)
	assert.Zero(t, cfg.Flow.SessionTTL())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
completion:
  provider: ollama
  model: llama3.1
  host: http://localhost:11434
flow:
  reprompt_on_mismatch: true
  session_ttl_minutes: 30
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "ollama", cfg.Completion.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Completion.Host)
	assert.True(t, cfg.Flow.RepromptOnMismatch)
	assert.Equal(t, 30*time.Minute, cfg.Flow.SessionTTL())
	// Unset sections keep their defaults.
	assert.Equal(t, "intakebot.db", cfg.Database.Path)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestCompletionKeyEnv(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"openai", EnvOpenAIKey},
		{"anthropic", EnvAnthropicKey},
		{"google", EnvGoogleKey},
		{"ollama", ""},
		{"none", ""},
	}
	for _, tc := range cases {
		c := CompletionConfig{Provider: tc.provider}
		assert.Equal(t, tc.want, c.CompletionKeyEnv(), "provider %s", tc.provider)
	}
}

func TestGetSecretPrecedence(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	t.Setenv("TEST_SECRET_A", "from-env")
	SetDecryptedSecrets(map[string]string{"TEST_SECRET_A": "from-file"})

	got, err := GetSecret("TEST_SECRET_A")
	require.NoError(t, err)
	assert.Equal(t, "from-file", got, "secrets file wins over environment")

	SetDecryptedSecrets(nil)
	got, err = GetSecret("TEST_SECRET_A")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	_, err = GetSecret("TEST_SECRET_MISSING")
	require.Error(t, err)
}

func TestSecretsFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	secrets := map[string]string{
		EnvAPIToken:  "api-token-value",
		EnvOpenAIKey: "sk-test",
	}

	require.False(t, SecretsFileExists(dir))
	require.NoError(t, EncryptSecretsFile(dir, "hunter2", secrets))
	require.True(t, SecretsFileExists(dir))

	got, err := DecryptSecretsFile(dir, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, secrets, got)

	_, err = DecryptSecretsFile(dir, "wrong-password")
	require.Error(t, err)
}

func TestValidateCredentials(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	// Shadow any credentials present in the test environment.
	t.Setenv(EnvAPIToken, "")
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvWhatsAppToken, "")

	cfg := &Config{Completion: CompletionConfig{Provider: "openai"}}

	SetDecryptedSecrets(map[string]string{})
	require.Error(t, cfg.ValidateCredentials(), "missing API token must be fatal")

	SetDecryptedSecrets(map[string]string{EnvAPIToken: "tok"})
	require.Error(t, cfg.ValidateCredentials(), "missing provider key must be fatal")

	SetDecryptedSecrets(map[string]string{EnvAPIToken: "tok", EnvOpenAIKey: "sk"})
	require.NoError(t, cfg.ValidateCredentials())

	// The notify token is only required once the sink is configured.
	cfg.Notify.WhatsAppAPIURL = "https://graph.example.com/v1/messages"
	require.Error(t, cfg.ValidateCredentials())

	SetDecryptedSecrets(map[string]string{
		EnvAPIToken: "tok", EnvOpenAIKey: "sk", EnvWhatsAppToken: "wa",
	})
	require.NoError(t, cfg.ValidateCredentials())
}
