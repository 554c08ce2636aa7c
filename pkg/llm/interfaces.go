// Package llm provides the LLM collaborator clients used for entity
// extraction and SQL generation.
package llm

import (
	"context"

	"github.com/cinecat/cinecat-engine/pkg/models"
)

// Client is a single chat-completion backend.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a chat completion for the given prompt.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}

// ClientFactory resolves a model name to a concrete client.
type ClientFactory interface {
	ClientFor(model string) (Client, error)
}

// Translator is the entity/translation collaborator consumed by the
// pipeline: it anonymizes questions and synthesizes SQL templates.
type Translator interface {
	// ExtractEntities returns the extracted entity variables and the
	// anonymized question. Any failure (transport or model-flagged) is
	// returned as an error; callers degrade gracefully.
	ExtractEntities(ctx context.Context, question string, model string) (*models.ExtractionResult, error)

	// GenerateSQL synthesizes an SQL template with {{variable}} placeholders
	// for the (anonymized) question. A model-flagged inability to produce
	// SQL is not an error: it is reported in GenerationResult.Error.
	GenerateSQL(ctx context.Context, question string, model string) (*models.GenerationResult, error)
}

// Ensure the OpenAI-compatible and Anthropic clients satisfy Client.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
)
