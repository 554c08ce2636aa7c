package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/llm"
	"github.com/cinecat/cinecat-engine/pkg/models"
	"github.com/cinecat/cinecat-engine/pkg/repositories"
	"github.com/cinecat/cinecat-engine/pkg/trace"
	"github.com/cinecat/cinecat-engine/pkg/vector"
)

// CacheState is the terminal state of one cache resolution. Exactly one of
// the four states holds per request.
type CacheState int

const (
	StateMiss CacheState = iota
	StateExactHit
	StateAnonymizedHit
	StateEmbeddingHit
)

// String implements fmt.Stringer.
func (s CacheState) String() string {
	switch s {
	case StateExactHit:
		return "exact_hit"
	case StateAnonymizedHit:
		return "anonymized_hit"
	case StateEmbeddingHit:
		return "embedding_hit"
	default:
		return "miss"
	}
}

// Resolution is the outcome of the three-tier cache lookup.
type Resolution struct {
	State CacheState

	// SQLQuery and Justification are adopted from the matching tier.
	// Empty on a miss.
	SQLQuery           string
	SQLQueryAnonymized string
	Justification      string

	// Extraction is nil on an exact hit; extraction is skipped there.
	Extraction         *models.ExtractionResult
	AnonymizedQuestion string
	ExtractionDegraded bool

	// ExtractionSeconds is how long the extraction call took.
	ExtractionSeconds float64
}

// ResolveOptions carries the per-request knobs of a resolution.
type ResolveOptions struct {
	// ReadCache disables all three lookup tiers when false.
	ReadCache bool
	// ExtractionModel selects the LLM used for entity extraction.
	ExtractionModel string
}

// CacheResolver decides whether a previously computed SQL query can be
// reused, and at which tier.
type CacheResolver interface {
	Resolve(ctx context.Context, q *models.Question, opts ResolveOptions, rec *trace.Recorder) (*Resolution, error)
}

type cacheResolver struct {
	cache      repositories.CacheRepository
	store      vector.Store
	translator llm.Translator

	versionKey          string
	questionsCollection string
	neighborCount       int
	similarityThreshold float64

	logger *zap.Logger
}

// NewCacheResolver creates a CacheResolver.
func NewCacheResolver(
	cache repositories.CacheRepository,
	store vector.Store,
	translator llm.Translator,
	versionKey string,
	questionsCollection string,
	neighborCount int,
	similarityThreshold float64,
	logger *zap.Logger,
) CacheResolver {
	return &cacheResolver{
		cache:               cache,
		store:               store,
		translator:          translator,
		versionKey:          versionKey,
		questionsCollection: questionsCollection,
		neighborCount:       neighborCount,
		similarityThreshold: similarityThreshold,
		logger:              logger.Named("resolver"),
	}
}

var _ CacheResolver = (*cacheResolver)(nil)

func (r *cacheResolver) Resolve(ctx context.Context, q *models.Question, opts ResolveOptions, rec *trace.Recorder) (*Resolution, error) {
	// Tier 1: exact question.
	if opts.ReadCache {
		entry, err := r.lookupExact(ctx, q)
		if err != nil {
			// A broken cache must not break the request.
			r.logger.Warn("exact cache lookup failed", zap.Error(err))
			rec.Recordf("cache: exact lookup failed (%v), treating as miss", err)
		}
		if entry != nil {
			rec.Record("cache: exact question hit")
			return &Resolution{
				State:              StateExactHit,
				SQLQuery:           entry.BestSQL(),
				SQLQueryAnonymized: entry.SQLQueryRaw,
				Justification:      entry.Justification,
			}, nil
		}
		rec.Record("cache: exact question miss")
	}

	// Nothing below can run without the original text.
	if q.Text == "" {
		return nil, apperrors.ErrMissingQuestion
	}

	resolution := &Resolution{State: StateMiss}

	started := time.Now()
	extraction, err := r.translator.ExtractEntities(ctx, q.Text, opts.ExtractionModel)
	resolution.ExtractionSeconds = time.Since(started).Seconds()
	if err != nil {
		// Degrade to the raw question rather than failing the request.
		r.logger.Warn("entity extraction failed, using raw question", zap.Error(err))
		rec.Recordf("extraction: failed (%v), falling back to raw question", err)
		extraction = &models.ExtractionResult{
			Variables:          map[string]string{},
			AnonymizedQuestion: q.Text,
		}
		resolution.ExtractionDegraded = true
	} else {
		rec.Recordf("extraction: %d entities, anonymized question %q",
			len(extraction.VariableNames()), extraction.AnonymizedQuestion)
	}
	resolution.Extraction = extraction
	resolution.AnonymizedQuestion = extraction.AnonymizedQuestion

	if !opts.ReadCache {
		return resolution, nil
	}

	// Tier 2: anonymized question, exact text.
	entry, err := r.cache.FindByAnonymized(ctx, extraction.AnonymizedQuestion, r.versionKey)
	if err != nil {
		r.logger.Warn("anonymized cache lookup failed", zap.Error(err))
		rec.Recordf("cache: anonymized lookup failed (%v), treating as miss", err)
	}
	if entry != nil {
		rec.Record("cache: anonymized question hit")
		resolution.State = StateAnonymizedHit
		resolution.SQLQuery = entry.BestSQL()
		resolution.SQLQueryAnonymized = entry.BestSQL()
		resolution.Justification = entry.Justification
		return resolution, nil
	}
	rec.Record("cache: anonymized question miss")

	// Tier 3: anonymized question, embedding similarity.
	if hit := r.lookupEmbedding(ctx, extraction, rec); hit != nil {
		resolution.State = StateEmbeddingHit
		resolution.SQLQuery = hit.SQLQuery
		resolution.SQLQueryAnonymized = hit.SQLQuery
		resolution.Justification = hit.Justification
	}
	return resolution, nil
}

func (r *cacheResolver) lookupExact(ctx context.Context, q *models.Question) (*models.CacheEntry, error) {
	if q.Hash != "" {
		entry, err := r.cache.FindByHash(ctx, q.Hash, r.versionKey)
		if err != nil || entry != nil {
			return entry, err
		}
	}
	if q.Text != "" {
		return r.cache.FindByQuestion(ctx, q.Text, r.versionKey)
	}
	return nil, nil
}

type embeddingHit struct {
	SQLQuery      string
	Justification string
}

// lookupEmbedding scans the nearest neighbors of the anonymized question.
// A candidate is accepted only when its document contains every entity
// variable of the current extraction as a {{var}} placeholder and its
// distance is under the threshold.
func (r *cacheResolver) lookupEmbedding(ctx context.Context, extraction *models.ExtractionResult, rec *trace.Recorder) *embeddingHit {
	candidates, err := r.store.Query(ctx, r.questionsCollection, extraction.AnonymizedQuestion, r.neighborCount)
	if err != nil {
		r.logger.Warn("embedding lookup failed", zap.Error(err))
		rec.Recordf("cache: embedding lookup unavailable (%v)", err)
		return nil
	}

	names := extraction.VariableNames()
	for _, c := range candidates {
		if !documentCoversVariables(c.Document, names) {
			rec.Recordf("cache: embedding candidate %s rejected, missing entity variables", c.ID)
			continue
		}
		if c.Distance >= r.similarityThreshold {
			rec.Recordf("cache: embedding candidate %s rejected, distance %.4f over threshold %.4f",
				c.ID, c.Distance, r.similarityThreshold)
			continue
		}

		sqlQuery, _ := c.Metadata["sql_query_anonymized"].(string)
		if sqlQuery == "" {
			r.logger.Warn("embedding candidate missing sql_query_anonymized metadata",
				zap.String("id", c.ID))
			rec.Recordf("cache: embedding candidate %s accepted but has no stored SQL, treating as miss", c.ID)
			return nil
		}
		justification, _ := c.Metadata["justification"].(string)

		rec.Recordf("cache: embedding hit %s at distance %.4f", c.ID, c.Distance)
		return &embeddingHit{SQLQuery: sqlQuery, Justification: justification}
	}

	rec.Record("cache: embedding miss")
	return nil
}

// documentCoversVariables reports whether every variable name appears as a
// {{name}} placeholder inside the document.
func documentCoversVariables(document string, names []string) bool {
	for _, name := range names {
		if !strings.Contains(document, fmt.Sprintf("{{%s}}", name)) {
			return false
		}
	}
	return true
}
