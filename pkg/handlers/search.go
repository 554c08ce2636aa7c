package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cinecat/cinecat-engine/pkg/apperrors"
	"github.com/cinecat/cinecat-engine/pkg/models"
	"github.com/cinecat/cinecat-engine/pkg/services"
)

// SearchHandler exposes the text2sql pipeline over HTTP.
type SearchHandler struct {
	service services.SearchService
	logger  *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service services.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// RegisterRoutes registers the search handler's routes on the given mux.
func (h *SearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /search/text2sql", h.Search)
	mux.HandleFunc("DELETE /cache/{version}", h.PurgeCache)
}

// Search handles POST /search/text2sql requests.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	resp, err := h.service.Search(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingQuestion) {
			_ = ErrorResponse(w, http.StatusBadRequest, "missing_question", err.Error())
			return
		}
		h.logger.Error("search failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "search failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to encode search response", zap.Error(err))
	}
}

// PurgeCache handles DELETE /cache/{version} requests, soft-deleting every
// cache row of one API version. Used when retiring a prompt generation.
func (h *SearchHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	apiVersion := r.PathValue("version")

	deleted, err := h.service.PurgeVersion(r.Context(), apiVersion)
	if err != nil {
		if errors.Is(err, apperrors.ErrConfigMismatch) {
			_ = ErrorResponse(w, http.StatusConflict, "active_version", err.Error())
			return
		}
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_version", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"version": apiVersion,
		"deleted": deleted,
	}); err != nil {
		h.logger.Error("failed to encode purge response", zap.Error(err))
	}
}
