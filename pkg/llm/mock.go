package llm

import (
	"context"

	"github.com/cinecat/cinecat-engine/pkg/models"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	CompleteCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	return m.ModelName
}

var _ Client = (*MockClient)(nil)

// MockTranslator is a configurable mock of the Translator interface.
type MockTranslator struct {
	ExtractEntitiesFunc func(ctx context.Context, question string, model string) (*models.ExtractionResult, error)
	GenerateSQLFunc     func(ctx context.Context, question string, model string) (*models.GenerationResult, error)

	ExtractEntitiesCalls int
	GenerateSQLCalls     int
}

// ExtractEntities implements Translator.
func (m *MockTranslator) ExtractEntities(ctx context.Context, question string, model string) (*models.ExtractionResult, error) {
	m.ExtractEntitiesCalls++
	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, question, model)
	}
	return &models.ExtractionResult{AnonymizedQuestion: question, Variables: map[string]string{}}, nil
}

// GenerateSQL implements Translator.
func (m *MockTranslator) GenerateSQL(ctx context.Context, question string, model string) (*models.GenerationResult, error) {
	m.GenerateSQLCalls++
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, question, model)
	}
	return &models.GenerationResult{}, nil
}

var _ Translator = (*MockTranslator)(nil)
