package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/entities"
	"github.com/cinecat/cinecat-engine/pkg/models"
	"github.com/cinecat/cinecat-engine/pkg/repositories"
	"github.com/cinecat/cinecat-engine/pkg/sqlrewrite"
	"github.com/cinecat/cinecat-engine/pkg/trace"
	"github.com/cinecat/cinecat-engine/pkg/vector"
)

// deterministicLookup gates the exact reference-table lookup that would run
// before the vector fuzzy match. Disabled: every entity literal goes through
// fuzzy resolution. See DESIGN.md before flipping this.
const deterministicLookup = false

// Substituter rewrites entity placeholders and literals in generated SQL
// into canonical, locale-correct reference values.
type Substituter interface {
	// Substitute returns the entity-resolved SQL and justification. It never
	// fails: fragments that cannot be resolved are left untouched.
	Substitute(ctx context.Context, sqlQuery, justification string, extraction *models.ExtractionResult, rec *trace.Recorder) (string, string)
}

type substituter struct {
	refs          repositories.ReferenceRepository
	store         vector.Store
	catalog       *entities.Catalog
	neighborCount int
	logger        *zap.Logger
}

// NewSubstituter creates a Substituter over the given reference data.
func NewSubstituter(
	refs repositories.ReferenceRepository,
	store vector.Store,
	catalog *entities.Catalog,
	neighborCount int,
	logger *zap.Logger,
) Substituter {
	return &substituter{
		refs:          refs,
		store:         store,
		catalog:       catalog,
		neighborCount: neighborCount,
		logger:        logger.Named("substituter"),
	}
}

var _ Substituter = (*substituter)(nil)

func (s *substituter) Substitute(ctx context.Context, sqlQuery, justification string, extraction *models.ExtractionResult, rec *trace.Recorder) (string, string) {
	if extraction != nil {
		sqlQuery, justification = expandVariables(sqlQuery, justification, extraction)
	}

	for _, field := range s.catalog.Fields() {
		for _, match := range sqlrewrite.FindFieldLiterals(sqlQuery, field.Name) {
			sqlQuery = s.resolveFragment(ctx, sqlQuery, field, match, rec)
		}
	}
	return sqlQuery, justification
}

// expandVariables replaces every {{variable}} occurrence with the extracted
// literal, quote-escaped.
func expandVariables(sqlQuery, justification string, extraction *models.ExtractionResult) (string, string) {
	for _, name := range extraction.VariableNames() {
		placeholder := fmt.Sprintf("{{%s}}", name)
		escaped := sqlrewrite.EscapeLiteral(extraction.Variables[name])
		sqlQuery = strings.ReplaceAll(sqlQuery, placeholder, escaped)
		justification = strings.ReplaceAll(justification, placeholder, escaped)
	}
	return sqlQuery, justification
}

// resolveFragment rewrites one FIELD = '<literal>' occurrence. Any failure
// leaves the fragment as the model wrote it.
func (s *substituter) resolveFragment(ctx context.Context, sqlQuery string, field entities.Field, match sqlrewrite.FieldMatch, rec *trace.Recorder) string {
	if deterministicLookup {
		if rewritten, ok := s.resolveExact(ctx, sqlQuery, field, match, rec); ok {
			return rewritten
		}
	}
	return s.resolveFuzzy(ctx, sqlQuery, field, match, rec)
}

// resolveExact looks the literal up verbatim in the reference table.
func (s *substituter) resolveExact(ctx context.Context, sqlQuery string, field entities.Field, match sqlrewrite.FieldMatch, rec *trace.Recorder) (string, bool) {
	rowID, err := s.refs.FindRowIDByValue(ctx, field, match.Literal)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("exact reference lookup failed", zap.String("field", field.Name), zap.Error(err))
		}
		return "", false
	}
	rec.Recordf("substitution: %s %q matched reference row %s exactly", field.Name, match.Literal, rowID)
	rewritten := s.rewriteFragment(ctx, sqlQuery, field, match, rowID, "en", rec)
	return rewritten, rewritten != sqlQuery
}

// resolveFuzzy resolves the literal through the field's vector collection.
func (s *substituter) resolveFuzzy(ctx context.Context, sqlQuery string, field entities.Field, match sqlrewrite.FieldMatch, rec *trace.Recorder) string {
	candidates, err := s.store.Query(ctx, field.Collection(), match.Literal, s.neighborCount)
	if err != nil {
		s.logger.Warn("fuzzy lookup unavailable",
			zap.String("collection", field.Collection()), zap.Error(err))
		rec.Recordf("substitution: collection %s unavailable, keeping %s = %q",
			field.Collection(), field.Name, match.Literal)
		return sqlQuery
	}
	if len(candidates) == 0 {
		rec.Recordf("substitution: no candidates for %s %q, keeping fragment", field.Name, match.Literal)
		return sqlQuery
	}

	selected := selectCandidate(candidates, match.Literal)
	rec.Recordf("substitution: %s %q resolved to %s (distance %.4f)",
		field.Name, match.Literal, selected.ID, selected.Distance)

	kind, rowID, locale, err := entities.DecodeRecordID(selected.ID)
	if err != nil {
		s.logger.Warn("malformed vector record id", zap.String("id", selected.ID), zap.Error(err))
		rec.Recordf("substitution: record id %q malformed, keeping fragment", selected.ID)
		return sqlQuery
	}
	if kind != field.Kind {
		rec.Recordf("substitution: record %s is a %s, expected %s, keeping fragment",
			selected.ID, kind, field.Kind)
		return sqlQuery
	}

	return s.rewriteFragment(ctx, sqlQuery, field, match, rowID, locale, rec)
}

// rewriteFragment reads the locale-correct reference column and splices it
// into the SQL in place of the original fragment.
func (s *substituter) rewriteFragment(ctx context.Context, sqlQuery string, field entities.Field, match sqlrewrite.FieldMatch, rowID, locale string, rec *trace.Recorder) string {
	column := field.ColumnFor(locale)

	value, err := s.refs.GetColumnValue(ctx, field, rowID, column)
	if err != nil {
		s.logger.Warn("reference row read failed",
			zap.String("table", field.Table), zap.String("row", rowID), zap.Error(err))
		rec.Recordf("substitution: %s row %s unreadable, keeping fragment", field.Table, rowID)
		return sqlQuery
	}

	if check := sqlrewrite.CheckResolvedValue(column, value); check != nil {
		s.logger.Warn("resolved value failed injection screen",
			zap.String("field", check.Field), zap.String("fingerprint", check.Fingerprint))
		rec.Recordf("substitution: resolved value for %s rejected by injection screen", field.Name)
		return sqlQuery
	}

	fragment := fmt.Sprintf("%s = '%s'", column, sqlrewrite.EscapeLiteral(value))
	rec.Recordf("substitution: %s -> %s", match.Fragment, fragment)
	return strings.Replace(sqlQuery, match.Fragment, fragment, 1)
}

// selectCandidate picks a winner among fuzzy candidates: first exact
// case-insensitive equality, then case-insensitive prefix, then rank 0.
func selectCandidate(candidates []vector.Candidate, literal string) vector.Candidate {
	for _, c := range candidates {
		if strings.EqualFold(c.Document, literal) {
			return c
		}
	}
	lower := strings.ToLower(literal)
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c.Document), lower) {
			return c
		}
	}
	return candidates[0]
}
