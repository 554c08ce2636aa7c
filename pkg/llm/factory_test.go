package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/config"
)

func newTestFactory() *Factory {
	return NewFactory(&config.LLMConfig{
		OpenAIBaseURL:   "https://api.openai.com/v1",
		OpenAIAPIKey:    "sk-test",
		AnthropicAPIKey: "ak-test",
	}, zap.NewNop())
}

func TestFactory_RoutesClaudeToAnthropic(t *testing.T) {
	client, err := newTestFactory().ClientFor("claude-sonnet-4-20250514")
	require.NoError(t, err)
	_, ok := client.(*AnthropicClient)
	assert.True(t, ok, "claude models should use the Anthropic client")
	assert.Equal(t, "claude-sonnet-4-20250514", client.Model())
}

func TestFactory_RoutesEverythingElseToOpenAI(t *testing.T) {
	for _, model := range []string{"gpt-4o", "gpt-5-mini", "qwen2.5-coder"} {
		client, err := newTestFactory().ClientFor(model)
		require.NoError(t, err)
		_, ok := client.(*OpenAIClient)
		assert.True(t, ok, "model %s should use the OpenAI-compatible client", model)
	}
}

func TestFactory_EmptyModel(t *testing.T) {
	_, err := newTestFactory().ClientFor("")
	require.Error(t, err)
}

func TestFactory_ClaudeWithoutKey(t *testing.T) {
	f := NewFactory(&config.LLMConfig{OpenAIBaseURL: "https://api.openai.com/v1"}, zap.NewNop())
	_, err := f.ClientFor("claude-sonnet-4-20250514")
	require.Error(t, err)
}
