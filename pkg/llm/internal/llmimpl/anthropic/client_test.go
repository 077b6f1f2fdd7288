package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/llm"
)

func TestSplitSystemExtractsSystemPrompt(t *testing.T) {
	system, rest, err := splitSystem([]llm.CompletionMessage{
		{Role: llm.RoleSystem, Content: "be helpful"},
		{Role: llm.RoleUser, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "be helpful", system)
	require.Len(t, rest, 1)
	assert.Equal(t, llm.RoleUser, rest[0].Role)
}

func TestSplitSystemMergesConsecutiveUserMessages(t *testing.T) {
	_, rest, err := splitSystem([]llm.CompletionMessage{
		{Role: llm.RoleUser, Content: "part one"},
		{Role: llm.RoleUser, Content: "part two"},
		{Role: llm.RoleAssistant, Content: "reply"},
		{Role: llm.RoleUser, Content: "part three"},
	})
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, "part one\n\npart two", rest[0].Content)
	assert.Equal(t, llm.RoleAssistant, rest[1].Role)
	assert.Equal(t, "part three", rest[2].Content)
}

func TestSplitSystemRejectsEmptyConversation(t *testing.T) {
	_, _, err := splitSystem([]llm.CompletionMessage{
		{Role: llm.RoleSystem, Content: "only system"},
	})
	require.Error(t, err)
}

func TestSplitSystemRejectsAssistantFirst(t *testing.T) {
	_, _, err := splitSystem([]llm.CompletionMessage{
		{Role: llm.RoleAssistant, Content: "me first"},
		{Role: llm.RoleUser, Content: "hello"},
	})
	require.Error(t, err)
}
