package repositories

import (
	"context"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/entities"
	"github.com/cinecat/cinecat-engine/pkg/models"
)

// MockCacheRepository is a configurable CacheRepository for tests.
type MockCacheRepository struct {
	FindByHashFunc       func(ctx context.Context, hash, version string) (*models.CacheEntry, error)
	FindByQuestionFunc   func(ctx context.Context, question, version string) (*models.CacheEntry, error)
	FindByAnonymizedFunc func(ctx context.Context, anonymized, version string) (*models.CacheEntry, error)
	InsertFunc           func(ctx context.Context, entry *models.CacheEntry) error
	DeleteByVersionFunc  func(ctx context.Context, version string) (int64, error)

	InsertCalls int
	// Inserted collects entries in insertion order when InsertFunc is unset.
	Inserted []*models.CacheEntry
}

var _ CacheRepository = (*MockCacheRepository)(nil)

func (m *MockCacheRepository) FindByHash(ctx context.Context, hash, version string) (*models.CacheEntry, error) {
	if m.FindByHashFunc != nil {
		return m.FindByHashFunc(ctx, hash, version)
	}
	return nil, nil
}

func (m *MockCacheRepository) FindByQuestion(ctx context.Context, question, version string) (*models.CacheEntry, error) {
	if m.FindByQuestionFunc != nil {
		return m.FindByQuestionFunc(ctx, question, version)
	}
	return nil, nil
}

func (m *MockCacheRepository) FindByAnonymized(ctx context.Context, anonymized, version string) (*models.CacheEntry, error) {
	if m.FindByAnonymizedFunc != nil {
		return m.FindByAnonymizedFunc(ctx, anonymized, version)
	}
	return nil, nil
}

func (m *MockCacheRepository) Insert(ctx context.Context, entry *models.CacheEntry) error {
	m.InsertCalls++
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.Inserted = append(m.Inserted, entry)
	return nil
}

func (m *MockCacheRepository) DeleteByVersion(ctx context.Context, version string) (int64, error) {
	if m.DeleteByVersionFunc != nil {
		return m.DeleteByVersionFunc(ctx, version)
	}
	return 0, nil
}

// MockReferenceRepository is a configurable ReferenceRepository for tests.
type MockReferenceRepository struct {
	FindRowIDByValueFunc func(ctx context.Context, field entities.Field, value string) (string, error)
	GetColumnValueFunc   func(ctx context.Context, field entities.Field, rowID, column string) (string, error)
}

var _ ReferenceRepository = (*MockReferenceRepository)(nil)

func (m *MockReferenceRepository) FindRowIDByValue(ctx context.Context, field entities.Field, value string) (string, error) {
	if m.FindRowIDByValueFunc != nil {
		return m.FindRowIDByValueFunc(ctx, field, value)
	}
	return "", apperrors.ErrNotFound
}

func (m *MockReferenceRepository) GetColumnValue(ctx context.Context, field entities.Field, rowID, column string) (string, error) {
	if m.GetColumnValueFunc != nil {
		return m.GetColumnValueFunc(ctx, field, rowID, column)
	}
	return "", apperrors.ErrNotFound
}
