package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/models"
	"github.com/cinecat/cinecat-engine/pkg/prompts"
	"github.com/cinecat/cinecat-engine/pkg/retry"
)

// translator implements Translator on top of a ClientFactory.
type translator struct {
	factory  ClientFactory
	timeout  time.Duration
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewTranslator creates the entity/translation collaborator. Each call is
// bounded by timeout and retried on transient failures.
func NewTranslator(factory ClientFactory, timeout time.Duration, logger *zap.Logger) Translator {
	return &translator{
		factory:  factory,
		timeout:  timeout,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("translator"),
	}
}

func (t *translator) complete(ctx context.Context, model, prompt, system string) (string, error) {
	client, err := t.factory.ClientFor(model)
	if err != nil {
		return "", fmt.Errorf("resolve model %q: %w", model, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	// Deterministic output: SQL templates and extractions must be stable
	// across identical questions so cache keys converge.
	return retry.DoWithResult(ctx, t.retryCfg, func() (string, error) {
		return client.Complete(ctx, prompt, system, 0)
	})
}

// ExtractEntities implements Translator.
func (t *translator) ExtractEntities(ctx context.Context, question string, model string) (*models.ExtractionResult, error) {
	raw, err := t.complete(ctx, model, prompts.EntityExtraction(question), prompts.ExtractionSystemMessage)
	if err != nil {
		return nil, err
	}

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("extraction response: %w", err)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	if msg := payload["error"]; msg != "" {
		return nil, fmt.Errorf("extraction failed: %s", msg)
	}

	anonymized, ok := payload["question"]
	if !ok || anonymized == "" {
		return nil, fmt.Errorf("extraction response missing anonymized question")
	}
	delete(payload, "question")
	delete(payload, "error")

	t.logger.Debug("entities extracted",
		zap.String("model", model),
		zap.Int("variables", len(payload)))

	return &models.ExtractionResult{
		Variables:          payload,
		AnonymizedQuestion: anonymized,
	}, nil
}

// GenerateSQL implements Translator.
func (t *translator) GenerateSQL(ctx context.Context, question string, model string) (*models.GenerationResult, error) {
	raw, err := t.complete(ctx, model, prompts.Text2SQL(question), prompts.Text2SQLSystemMessage)
	if err != nil {
		return nil, err
	}

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("generation response: %w", err)
	}

	var payload struct {
		SQLQuery      string `json:"sql_query"`
		Justification string `json:"justification"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}

	result := &models.GenerationResult{
		SQLQuery:      StripSQLFences(payload.SQLQuery),
		Justification: payload.Justification,
		Error:         payload.Error,
	}

	t.logger.Debug("sql generated",
		zap.String("model", model),
		zap.Bool("ambiguous", result.Ambiguous()),
		zap.Int("sql_len", len(result.SQLQuery)))

	return result, nil
}
