// Package repositories provides data access for the query cache and the
// canonical entity reference tables.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cinecat/cinecat-engine/pkg/database"
	"github.com/cinecat/cinecat-engine/pkg/models"
)

// querier is satisfied by both the pool and a request-scoped connection.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CacheRepository provides data access for the relational query cache.
// Lookups return (nil, nil) on a miss; a miss is the common path, not an
// error.
type CacheRepository interface {
	// FindByHash looks up the newest not-deleted exact-question row for a
	// question hash within a version partition.
	FindByHash(ctx context.Context, hash, version string) (*models.CacheEntry, error)
	// FindByQuestion looks up the newest not-deleted exact-question row by
	// question text within a version partition.
	FindByQuestion(ctx context.Context, question, version string) (*models.CacheEntry, error)
	// FindByAnonymized looks up the newest not-deleted anonymized row by
	// anonymized question text within a version partition.
	FindByAnonymized(ctx context.Context, anonymized, version string) (*models.CacheEntry, error)

	Insert(ctx context.Context, entry *models.CacheEntry) error

	// DeleteByVersion soft-deletes every row of a version partition and
	// returns how many rows were touched.
	DeleteByVersion(ctx context.Context, version string) (int64, error)
}

type cacheRepository struct {
	db *database.DB
}

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(db *database.DB) CacheRepository {
	return &cacheRepository{db: db}
}

var _ CacheRepository = (*cacheRepository)(nil)

func (r *cacheRepository) conn(ctx context.Context) querier {
	if scope, ok := database.GetRequestScope(ctx); ok && scope.Conn != nil {
		return scope.Conn
	}
	return r.db.Pool
}

const cacheColumns = `
	id, question, question_hash, sql_query_raw, sql_query_processed,
	justification, api_version, anonymized,
	time_entity_extraction, time_sql_generation, time_entity_substitution,
	time_query_execution, processing_time,
	deleted, created_at, updated_at`

func scanCacheEntry(row pgx.Row) (*models.CacheEntry, error) {
	var e models.CacheEntry
	err := row.Scan(
		&e.ID, &e.Question, &e.QuestionHash, &e.SQLQueryRaw, &e.SQLQueryProcessed,
		&e.Justification, &e.APIVersion, &e.Anonymized,
		&e.Timings.EntityExtraction, &e.Timings.SQLGeneration, &e.Timings.EntitySubstitution,
		&e.Timings.QueryExecution, &e.Timings.Total,
		&e.Deleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *cacheRepository) findOne(ctx context.Context, where string, anonymized bool, key, version string) (*models.CacheEntry, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM t_wc_t2s_cache
		WHERE %s = $1 AND api_version = $2 AND anonymized = $3 AND NOT deleted
		ORDER BY updated_at DESC
		LIMIT 1`, cacheColumns, where)

	entry, err := scanCacheEntry(r.conn(ctx).QueryRow(ctx, sql, key, version, anonymized))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	return entry, nil
}

func (r *cacheRepository) FindByHash(ctx context.Context, hash, version string) (*models.CacheEntry, error) {
	return r.findOne(ctx, "question_hash", false, hash, version)
}

func (r *cacheRepository) FindByQuestion(ctx context.Context, question, version string) (*models.CacheEntry, error) {
	return r.findOne(ctx, "question", false, question, version)
}

func (r *cacheRepository) FindByAnonymized(ctx context.Context, anonymized, version string) (*models.CacheEntry, error) {
	return r.findOne(ctx, "question", true, anonymized, version)
}

func (r *cacheRepository) Insert(ctx context.Context, entry *models.CacheEntry) error {
	now := time.Now()
	entry.ID = uuid.New()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	sql := `
		INSERT INTO t_wc_t2s_cache (
			id, question, question_hash, sql_query_raw, sql_query_processed,
			justification, api_version, anonymized,
			time_entity_extraction, time_sql_generation, time_entity_substitution,
			time_query_execution, processing_time,
			deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.conn(ctx).Exec(ctx, sql,
		entry.ID, entry.Question, entry.QuestionHash, entry.SQLQueryRaw, entry.SQLQueryProcessed,
		entry.Justification, entry.APIVersion, entry.Anonymized,
		entry.Timings.EntityExtraction, entry.Timings.SQLGeneration, entry.Timings.EntitySubstitution,
		entry.Timings.QueryExecution, entry.Timings.Total,
		entry.Deleted, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

func (r *cacheRepository) DeleteByVersion(ctx context.Context, version string) (int64, error) {
	sql := `
		UPDATE t_wc_t2s_cache
		SET deleted = TRUE, updated_at = NOW()
		WHERE api_version = $1 AND NOT deleted`

	tag, err := r.conn(ctx).Exec(ctx, sql, version)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache version %s: %w", version, err)
	}
	return tag.RowsAffected(), nil
}
