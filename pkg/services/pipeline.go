package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/config"
	"github.com/cinecat/cinecat-engine/pkg/database"
	"github.com/cinecat/cinecat-engine/pkg/llm"
	"github.com/cinecat/cinecat-engine/pkg/models"
	"github.com/cinecat/cinecat-engine/pkg/repositories"
	"github.com/cinecat/cinecat-engine/pkg/sqlrewrite"
	"github.com/cinecat/cinecat-engine/pkg/trace"
	"github.com/cinecat/cinecat-engine/pkg/vector"
	"github.com/cinecat/cinecat-engine/pkg/version"
)

// SearchService is the caller-facing pipeline: cache resolution, generation,
// substitution, pagination, execution and write-back for one question.
type SearchService interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)

	// PurgeVersion soft-deletes every cache row of one API version.
	PurgeVersion(ctx context.Context, apiVersion string) (int64, error)
}

type searchService struct {
	cfg         *config.Config
	db          *database.DB
	resolver    CacheResolver
	translator  llm.Translator
	substituter Substituter
	executor    QueryExecutor
	cache       repositories.CacheRepository
	store       vector.Store
	logger      *zap.Logger
}

// NewSearchService wires the pipeline together.
func NewSearchService(
	cfg *config.Config,
	db *database.DB,
	resolver CacheResolver,
	translator llm.Translator,
	substituter Substituter,
	executor QueryExecutor,
	cache repositories.CacheRepository,
	store vector.Store,
	logger *zap.Logger,
) SearchService {
	return &searchService{
		cfg:         cfg,
		db:          db,
		resolver:    resolver,
		translator:  translator,
		substituter: substituter,
		executor:    executor,
		cache:       cache,
		store:       store,
		logger:      logger.Named("search"),
	}
}

var _ SearchService = (*searchService)(nil)

func (s *searchService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	started := time.Now()

	question := &models.Question{Text: req.Question, Hash: req.QuestionHashed, Page: req.Page}
	question.Normalize()
	if !question.Valid() {
		return nil, apperrors.ErrMissingQuestion
	}

	rowsPerPage := req.RowsPerPage
	if rowsPerPage <= 0 {
		rowsPerPage = s.cfg.Cache.RowsPerPage
	}
	if rowsPerPage > s.cfg.Cache.MaxRowsPerPage {
		rowsPerPage = s.cfg.Cache.MaxRowsPerPage
	}

	extractionModel := req.LLMModelEntityExtraction
	if extractionModel == "" {
		extractionModel = s.cfg.LLM.ExtractionModel
	}
	text2sqlModel := req.LLMModelText2SQL
	if text2sqlModel == "" {
		text2sqlModel = s.cfg.LLM.Text2SQLModel
	}

	// One pooled connection serves every relational operation of this
	// request: cache lookups, reference reads and the final execution.
	if s.db != nil {
		scopedCtx, release, err := s.db.WithRequestScope(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
		ctx = scopedCtx
	}

	rec := trace.NewRecorder(s.logger)
	rec.Recordf("question: %q (page %d, rows %d)", question.Text, question.Page, rowsPerPage)

	resp := &models.SearchResponse{
		Question:                 question.Text,
		QuestionHashed:           question.Hash,
		APIVersion:               s.cfg.Version,
		LLMModelEntityExtraction: extractionModel,
		LLMModelText2SQL:         text2sqlModel,
		Page:                     question.Page,
		RowsPerPage:              rowsPerPage,
		Result:                   []models.ResultRow{},
	}

	res, err := s.resolver.Resolve(ctx, question, ResolveOptions{
		ReadCache:       req.RetrieveFromCache,
		ExtractionModel: extractionModel,
	}, rec)
	if err != nil {
		return nil, err
	}

	resp.CachedExactQuestion = res.State == StateExactHit
	resp.CachedAnonymizedQuestion = res.State == StateAnonymizedHit
	resp.CachedEmbedding = res.State == StateEmbeddingHit
	resp.QuestionAnonymized = res.AnonymizedQuestion
	resp.Timings.EntityExtraction = res.ExtractionSeconds
	if res.Extraction != nil {
		resp.EntityExtraction = res.Extraction.Variables
	}

	template := res.SQLQueryAnonymized
	justification := res.Justification

	if res.State == StateMiss {
		genStarted := time.Now()
		gen, genErr := s.translator.GenerateSQL(ctx, res.AnonymizedQuestion, text2sqlModel)
		resp.Timings.SQLGeneration = time.Since(genStarted).Seconds()
		if genErr != nil {
			s.logger.Error("sql generation failed", zap.Error(genErr))
			rec.Recordf("generation: failed (%v)", genErr)
			resp.Error = "sql generation failed"
			resp.Timings.Total = time.Since(started).Seconds()
			resp.Trace = rec.Texts()
			return resp, nil
		}
		template = gen.SQLQuery
		justification = gen.Justification
		resp.Ambiguous = gen.Ambiguous()
		resp.Error = gen.Error
		if resp.Ambiguous {
			rec.Recordf("generation: ambiguous question (%s)", gen.Error)
		} else {
			rec.Record("generation: produced SQL template")
		}
	}

	resp.SQLQueryAnonymized = template
	resp.Justification = justification

	if resp.Ambiguous {
		// No executable SQL. The template is still a cacheable artifact.
		resp.SQLQuery = template
		s.writeBack(ctx, req.StoreToCache, question, res, template, template, justification, resp, rec, started)
		resp.Trace = rec.Texts()
		return resp, nil
	}

	// Exact-tier SQL is already entity-resolved; everything else carries
	// placeholders or unresolved literals.
	processed := res.SQLQuery
	if res.State != StateExactHit {
		subStarted := time.Now()
		processed, justification = s.substituter.Substitute(ctx, template, justification, res.Extraction, rec)
		resp.Timings.EntitySubstitution = time.Since(subStarted).Seconds()
		resp.Justification = justification
	}

	normalized, valErr := sqlrewrite.ValidateAndNormalize(processed)
	if valErr != nil {
		rec.Recordf("validation: %v, skipping execution", valErr)
		resp.SQLQuery = processed
		s.writeBack(ctx, req.StoreToCache, question, res, template, processed, justification, resp, rec, started)
		resp.Trace = rec.Texts()
		return resp, nil
	}

	paginated := sqlrewrite.Paginate(normalized, question.Page, rowsPerPage)
	resp.ModelLimit = paginated.ModelLimit
	resp.ModelOffset = paginated.ModelOffset
	resp.SQLQuery = paginated.SQL
	if paginated.ModelLimit != nil {
		rec.Recordf("pagination: stripped model limit %d", *paginated.ModelLimit)
	}

	execStarted := time.Now()
	rows, execErr := s.executor.Execute(ctx, paginated.SQL)
	resp.Timings.QueryExecution = time.Since(execStarted).Seconds()
	if execErr != nil {
		// Execution failures degrade to an empty result; detail stays in
		// the trace, never in the row payload.
		s.logger.Warn("query execution failed", zap.Error(execErr))
		rec.Recordf("execution: failed (%v), returning empty result", execErr)
		rows = []models.ResultRow{}
	} else {
		rec.Recordf("execution: %d rows", len(rows))
	}
	resp.Result = rows

	s.writeBack(ctx, req.StoreToCache, question, res, template, normalized, justification, resp, rec, started)
	resp.Trace = rec.Texts()
	return resp, nil
}

// writeBack persists the computed query to every cache tier that did not
// hit, in order: exact row, anonymized row, embedding record. Each write is
// best-effort; a failed write never fails the request.
func (s *searchService) writeBack(ctx context.Context, store bool, question *models.Question, res *Resolution, template, processed, justification string, resp *models.SearchResponse, rec *trace.Recorder, started time.Time) {
	resp.Timings.Total = time.Since(started).Seconds()

	if !store || res.State == StateExactHit {
		return
	}

	if question.Text != "" {
		entry := &models.CacheEntry{
			Question:          question.Text,
			QuestionHash:      question.Hash,
			SQLQueryRaw:       template,
			SQLQueryProcessed: processed,
			Justification:     justification,
			APIVersion:        s.cfg.VersionKey,
			Timings:           resp.Timings,
		}
		if err := s.cache.Insert(ctx, entry); err != nil {
			s.logger.Warn("exact cache write failed", zap.Error(err))
			rec.Recordf("write-back: exact row failed (%v)", err)
		} else {
			rec.Record("write-back: exact row stored")
		}
	}

	if res.State != StateAnonymizedHit && res.AnonymizedQuestion != "" {
		entry := &models.CacheEntry{
			Question:      res.AnonymizedQuestion,
			QuestionHash:  models.HashText(res.AnonymizedQuestion),
			SQLQueryRaw:   template,
			Justification: justification,
			APIVersion:    s.cfg.VersionKey,
			Anonymized:    true,
			Timings:       resp.Timings,
		}
		if err := s.cache.Insert(ctx, entry); err != nil {
			s.logger.Warn("anonymized cache write failed", zap.Error(err))
			rec.Recordf("write-back: anonymized row failed (%v)", err)
		} else {
			rec.Record("write-back: anonymized row stored")
		}
	}

	// Ambiguous templates never reach the embedding tier: similarity reuse
	// of a non-executable template would only propagate the ambiguity.
	if res.State == StateMiss && !resp.Ambiguous && res.AnonymizedQuestion != "" && template != "" {
		s.writeEmbedding(ctx, res, template, justification, resp, rec)
	}
}

// writeEmbedding stores the anonymized question with its SQL template under
// a content-derived id, checking existence first so the write is idempotent.
func (s *searchService) writeEmbedding(ctx context.Context, res *Resolution, template, justification string, resp *models.SearchResponse, rec *trace.Recorder) {
	id := models.HashText(res.AnonymizedQuestion)

	existing, err := s.store.Get(ctx, s.cfg.Vector.QuestionsCollection, id)
	if err != nil {
		s.logger.Warn("embedding existence check failed", zap.Error(err))
		rec.Recordf("write-back: embedding check failed (%v)", err)
		return
	}
	if existing != nil {
		rec.Record("write-back: embedding already stored")
		return
	}

	record := vector.Record{
		ID:       id,
		Document: res.AnonymizedQuestion,
		Metadata: map[string]any{
			"sql_query_anonymized":     template,
			"justification":            justification,
			"api_version":              s.cfg.VersionKey,
			"entities":                 strings.Join(res.Extraction.VariableNames(), ","),
			"time_entity_extraction":   resp.Timings.EntityExtraction,
			"time_sql_generation":      resp.Timings.SQLGeneration,
			"time_entity_substitution": resp.Timings.EntitySubstitution,
			"time_query_execution":     resp.Timings.QueryExecution,
			"processing_time":          resp.Timings.Total,
			"created_at":               time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := s.store.Add(ctx, s.cfg.Vector.QuestionsCollection, record); err != nil {
		s.logger.Warn("embedding write failed", zap.Error(err))
		rec.Recordf("write-back: embedding failed (%v)", err)
		return
	}
	rec.Record("write-back: embedding stored")
}

func (s *searchService) PurgeVersion(ctx context.Context, apiVersion string) (int64, error) {
	key, err := version.Format(apiVersion)
	if err != nil {
		return 0, err
	}
	// Only retired generations may be purged; emptying the live partition
	// would force regeneration of every cached question.
	if key == s.cfg.VersionKey {
		return 0, fmt.Errorf("version %s is the active partition: %w", apiVersion, apperrors.ErrConfigMismatch)
	}
	deleted, err := s.cache.DeleteByVersion(ctx, key)
	if err != nil {
		return 0, err
	}
	// Embedding purge is best-effort; the relational rows are already gone.
	if err := s.store.DeleteWhere(ctx, s.cfg.Vector.QuestionsCollection, map[string]any{"api_version": key}); err != nil {
		s.logger.Warn("embedding purge failed", zap.String("version", key), zap.Error(err))
	}
	s.logger.Info("purged cache version",
		zap.String("version", key), zap.Int64("rows", deleted))
	return deleted, nil
}
