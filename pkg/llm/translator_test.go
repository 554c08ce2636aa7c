package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFactory hands out a fixed client regardless of model.
type stubFactory struct {
	client Client
	err    error
}

func (f *stubFactory) ClientFor(model string) (Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func newTestTranslator(client Client) Translator {
	return NewTranslator(&stubFactory{client: client}, time.Second, zap.NewNop())
}

func TestExtractEntities(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		assert.Zero(t, temperature)
		return `{"Person_name1": "Tom Hanks", "question": "Movies with {{Person_name1}}"}`, nil
	}

	got, err := newTestTranslator(mock).ExtractEntities(context.Background(), "Movies with Tom Hanks", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "Movies with {{Person_name1}}", got.AnonymizedQuestion)
	assert.Equal(t, map[string]string{"Person_name1": "Tom Hanks"}, got.Variables)
	assert.Equal(t, []string{"Person_name1"}, got.VariableNames())
}

func TestExtractEntities_ModelFlaggedError(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"error": "question is gibberish"}`, nil
	}

	_, err := newTestTranslator(mock).ExtractEntities(context.Background(), "asdfgh", "gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gibberish")
}

func TestExtractEntities_MissingQuestionKey(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"Person_name1": "Tom Hanks"}`, nil
	}

	_, err := newTestTranslator(mock).ExtractEntities(context.Background(), "Movies with Tom Hanks", "gpt-4o")
	require.Error(t, err)
}

func TestGenerateSQL(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "```json\n{\"sql_query\": \"```sql\\nSELECT * FROM T_MOVIE\\n```\", \"justification\": \"lists movies\", \"error\": \"\"}\n```", nil
	}

	got, err := newTestTranslator(mock).GenerateSQL(context.Background(), "All movies", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM T_MOVIE", got.SQLQuery)
	assert.Equal(t, "lists movies", got.Justification)
	assert.False(t, got.Ambiguous())
}

func TestGenerateSQL_Ambiguous(t *testing.T) {
	mock := NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"sql_query": "", "justification": "", "error": "question has two readings"}`, nil
	}

	got, err := newTestTranslator(mock).GenerateSQL(context.Background(), "it?", "gpt-4o")
	require.NoError(t, err)
	assert.True(t, got.Ambiguous())
	assert.Equal(t, "question has two readings", got.Error)
}

func TestTranslator_FactoryError(t *testing.T) {
	tr := NewTranslator(&stubFactory{err: errors.New("unknown model")}, time.Second, zap.NewNop())
	_, err := tr.ExtractEntities(context.Background(), "q", "nope")
	require.Error(t, err)
}
