// Package services implements the text2sql pipeline: cache resolution,
// entity substitution, execution and cache write-back.
package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/database"
	"github.com/cinecat/cinecat-engine/pkg/logging"
	"github.com/cinecat/cinecat-engine/pkg/models"
)

// QueryExecutor runs the final paginated SQL against the media catalog.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlQuery string) ([]models.ResultRow, error)
}

type pgxExecutor struct {
	db     *database.DB
	logger *zap.Logger
}

// NewQueryExecutor creates a QueryExecutor backed by the catalog database.
func NewQueryExecutor(db *database.DB, logger *zap.Logger) QueryExecutor {
	return &pgxExecutor{db: db, logger: logger.Named("executor")}
}

var _ QueryExecutor = (*pgxExecutor)(nil)

func (e *pgxExecutor) query(ctx context.Context, sqlQuery string) (pgx.Rows, error) {
	if scope, ok := database.GetRequestScope(ctx); ok && scope.Conn != nil {
		return scope.Conn.Query(ctx, sqlQuery)
	}
	return e.db.Pool.Query(ctx, sqlQuery)
}

func (e *pgxExecutor) Execute(ctx context.Context, sqlQuery string) ([]models.ResultRow, error) {
	rows, err := e.query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := make([]models.ResultRow, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		data := make(map[string]any, len(fields))
		for i, fd := range fields {
			data[string(fd.Name)] = values[i]
		}
		result = append(result, models.ResultRow{Index: len(result), Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	e.logger.Debug("executed query",
		zap.String("sql", logging.TruncateQuery(sqlQuery)),
		zap.Int("rows", len(result)))
	return result, nil
}

// MockQueryExecutor is a configurable QueryExecutor for tests.
type MockQueryExecutor struct {
	ExecuteFunc  func(ctx context.Context, sqlQuery string) ([]models.ResultRow, error)
	ExecuteCalls int
	// LastSQL records the query passed to the most recent Execute call.
	LastSQL string
}

var _ QueryExecutor = (*MockQueryExecutor)(nil)

func (m *MockQueryExecutor) Execute(ctx context.Context, sqlQuery string) ([]models.ResultRow, error) {
	m.ExecuteCalls++
	m.LastSQL = sqlQuery
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, sqlQuery)
	}
	return []models.ResultRow{}, nil
}
