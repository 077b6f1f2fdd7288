package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientHostedProvidersRequireKey(t *testing.T) {
	for _, provider := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle} {
		_, err := NewClient(Options{Provider: provider})
		require.Error(t, err, "provider %s must refuse an empty key", provider)
	}
}

func TestNewClientAppliesDefaultModel(t *testing.T) {
	client, err := NewClient(Options{Provider: ProviderAnthropic, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, defaultModels[ProviderAnthropic], client.GetModelName())

	client, err = NewClient(Options{Provider: ProviderAnthropic, APIKey: "sk-test", Model: "claude-opus-4"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4", client.GetModelName())
}

func TestNewClientOllamaNeedsNoKey(t *testing.T) {
	client, err := NewClient(Options{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, defaultModels[ProviderOllama], client.GetModelName())
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(Options{Provider: "palantir"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown completion provider")
}
