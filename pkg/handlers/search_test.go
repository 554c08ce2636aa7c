package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/models"
)

// mockSearchService is a function-field mock of services.SearchService.
type mockSearchService struct {
	SearchFunc       func(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
	PurgeVersionFunc func(ctx context.Context, apiVersion string) (int64, error)
}

func (m *mockSearchService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return &models.SearchResponse{}, nil
}

func (m *mockSearchService) PurgeVersion(ctx context.Context, apiVersion string) (int64, error) {
	if m.PurgeVersionFunc != nil {
		return m.PurgeVersionFunc(ctx, apiVersion)
	}
	return 0, nil
}

func newSearchMux(svc *mockSearchService) *http.ServeMux {
	mux := http.NewServeMux()
	NewSearchHandler(svc, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestSearch_OK(t *testing.T) {
	svc := &mockSearchService{
		SearchFunc: func(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
			assert.Equal(t, "Movies with Tom Hanks", req.Question)
			return &models.SearchResponse{
				Question: req.Question,
				SQLQuery: "SELECT * FROM T_MOVIE WHERE ID_PERSON = '42' LIMIT 50",
				Result:   []models.ResultRow{{Index: 0, Data: map[string]any{"MOVIE_TITLE": "Big"}}},
			}, nil
		},
	}

	body := `{"question": "Movies with Tom Hanks", "retrieve_from_cache": true, "store_to_cache": true}`
	req := httptest.NewRequest(http.MethodPost, "/search/text2sql", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newSearchMux(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "SELECT * FROM T_MOVIE WHERE ID_PERSON = '42' LIMIT 50", resp.SQLQuery)
	require.Len(t, resp.Result, 1)
	assert.Equal(t, 0, resp.Result[0].Index)
}

func TestSearch_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/search/text2sql", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	newSearchMux(&mockSearchService{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearch_MissingQuestion(t *testing.T) {
	svc := &mockSearchService{
		SearchFunc: func(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
			return nil, apperrors.ErrMissingQuestion
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/search/text2sql", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	newSearchMux(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "missing_question")
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search/text2sql", nil)
	rr := httptest.NewRecorder()
	newSearchMux(&mockSearchService{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPurgeCache(t *testing.T) {
	svc := &mockSearchService{
		PurgeVersionFunc: func(ctx context.Context, apiVersion string) (int64, error) {
			assert.Equal(t, "1.1.13", apiVersion)
			return 7, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/cache/1.1.13", nil)
	rr := httptest.NewRecorder()
	newSearchMux(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"deleted":7`)
}
