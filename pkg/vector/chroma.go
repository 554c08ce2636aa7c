package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChromaStore talks to a Chroma-compatible REST endpoint.
// No maintained Go client exists for this API, so the adapter speaks the
// HTTP surface directly.
type ChromaStore struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu            sync.Mutex
	collectionIDs map[string]string // name -> collection id
}

// NewChromaStore creates a store for the given base URL, e.g.
// "http://localhost:8500".
func NewChromaStore(baseURL string, timeout time.Duration, logger *zap.Logger) *ChromaStore {
	return &ChromaStore{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		client:        &http.Client{Timeout: timeout},
		logger:        logger.Named("vector"),
		collectionIDs: make(map[string]string),
	}
}

var _ Store = (*ChromaStore)(nil)

func (s *ChromaStore) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("vector store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("vector store returned %d: %s", resp.StatusCode, string(detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// collectionID resolves a collection name to its id, caching the result.
func (s *ChromaStore) collectionID(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	if id, ok := s.collectionIDs[name]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	var col struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/v1/collections/"+name, nil, &col); err != nil {
		return "", fmt.Errorf("resolve collection %q: %w", name, err)
	}

	s.mu.Lock()
	s.collectionIDs[name] = col.ID
	s.mu.Unlock()
	return col.ID, nil
}

// Query implements Store.
func (s *ChromaStore) Query(ctx context.Context, collection string, text string, k int) ([]Candidate, error) {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"query_texts": []string{text},
		"n_results":   k,
		"include":     []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/query", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(resp.IDs[0]))
	for i, recordID := range resp.IDs[0] {
		c := Candidate{Record: Record{ID: recordID}}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			c.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			c.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			c.Distance = resp.Distances[0][i]
		}
		candidates = append(candidates, c)
	}

	s.logger.Debug("vector query",
		zap.String("collection", collection),
		zap.Int("k", k),
		zap.Int("results", len(candidates)))

	return candidates, nil
}

// Get implements Store.
func (s *ChromaStore) Get(ctx context.Context, collection string, recordID string) (*Record, error) {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"ids":     []string{recordID},
		"include": []string{"documents", "metadatas"},
	}
	var resp struct {
		IDs       []string         `json:"ids"`
		Documents []string         `json:"documents"`
		Metadatas []map[string]any `json:"metadatas"`
	}
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/get", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	rec := &Record{ID: resp.IDs[0]}
	if len(resp.Documents) > 0 {
		rec.Document = resp.Documents[0]
	}
	if len(resp.Metadatas) > 0 {
		rec.Metadata = resp.Metadatas[0]
	}
	return rec, nil
}

// Add implements Store.
func (s *ChromaStore) Add(ctx context.Context, collection string, rec Record) error {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	reqBody := map[string]any{
		"ids":       []string{rec.ID},
		"documents": []string{rec.Document},
		"metadatas": []map[string]any{rec.Metadata},
	}
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/add", reqBody, nil); err != nil {
		return err
	}

	s.logger.Debug("vector add",
		zap.String("collection", collection),
		zap.String("id", rec.ID))
	return nil
}

// DeleteWhere implements Store.
func (s *ChromaStore) DeleteWhere(ctx context.Context, collection string, where map[string]any) error {
	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	reqBody := map[string]any{"where": where}
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/delete", reqBody, nil); err != nil {
		return err
	}

	s.logger.Debug("vector delete",
		zap.String("collection", collection),
		zap.Any("where", where))
	return nil
}
