package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/config"
)

// Factory creates clients based on the requested model name. Claude models
// are routed to Anthropic, everything else to the OpenAI-compatible endpoint.
type Factory struct {
	cfg    *config.LLMConfig
	logger *zap.Logger
}

// NewFactory creates a new factory.
func NewFactory(cfg *config.LLMConfig, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

var _ ClientFactory = (*Factory)(nil)

// ClientFor returns a client for the given model name.
func (f *Factory) ClientFor(model string) (Client, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	if strings.HasPrefix(strings.ToLower(model), "claude") {
		return NewAnthropicClient(f.cfg.AnthropicAPIKey, model, f.logger)
	}

	return NewOpenAIClient(&OpenAIConfig{
		Endpoint: f.cfg.OpenAIBaseURL,
		Model:    model,
		APIKey:   f.cfg.OpenAIAPIKey,
	}, f.logger)
}
