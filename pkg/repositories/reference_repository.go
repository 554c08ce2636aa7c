package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/database"
	"github.com/cinecat/cinecat-engine/pkg/entities"
)

// ReferenceRepository reads the canonical entity reference tables.
// Table and column identifiers always come from the embedded entity catalog,
// never from request input; only values are parameterized.
type ReferenceRepository interface {
	// FindRowIDByValue finds the reference row whose field column equals
	// value exactly, best-ranked first. Returns apperrors.ErrNotFound when
	// no row matches.
	FindRowIDByValue(ctx context.Context, field entities.Field, value string) (string, error)

	// GetColumnValue reads one column of one reference row as text.
	// Returns apperrors.ErrNotFound when the row does not exist.
	GetColumnValue(ctx context.Context, field entities.Field, rowID, column string) (string, error)
}

type referenceRepository struct {
	db *database.DB
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db *database.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

var _ ReferenceRepository = (*referenceRepository)(nil)

func (r *referenceRepository) conn(ctx context.Context) querier {
	if scope, ok := database.GetRequestScope(ctx); ok && scope.Conn != nil {
		return scope.Conn
	}
	return r.db.Pool
}

func (r *referenceRepository) FindRowIDByValue(ctx context.Context, field entities.Field, value string) (string, error) {
	order := ""
	if field.RankColumn != "" {
		order = fmt.Sprintf(" ORDER BY %s DESC", field.RankColumn)
	}
	sql := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s = $1%s LIMIT 1`,
		field.IDColumn, field.Table, field.Name, order)

	var rowID string
	err := r.conn(ctx).QueryRow(ctx, sql, value).Scan(&rowID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s %q: %w", field.Kind, value, apperrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", field.Table, err)
	}
	return rowID, nil
}

func (r *referenceRepository) GetColumnValue(ctx context.Context, field entities.Field, rowID, column string) (string, error) {
	sql := fmt.Sprintf(`SELECT %s::text FROM %s WHERE %s::text = $1 LIMIT 1`,
		column, field.Table, field.IDColumn)

	var value string
	err := r.conn(ctx).QueryRow(ctx, sql, rowID).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s row %s: %w", field.Table, rowID, apperrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s.%s: %w", field.Table, column, err)
	}
	return value, nil
}
