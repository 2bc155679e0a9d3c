// Package handlers implements the catalog's HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/services"
)

// CatalogHandler serves the collection listing and detail endpoints.
type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers the catalog routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/galaxies", h.ListGalaxies)
	mux.HandleFunc("GET /api/galaxies/{id}", h.GetGalaxy)
	mux.HandleFunc("GET /api/subtractions", h.ListSubtractions)
	mux.HandleFunc("GET /api/subtractions/{id}", h.GetSubtraction)
	mux.HandleFunc("GET /api/candidates", h.ListCandidates)
	mux.HandleFunc("GET /api/candidates/{id}", h.GetCandidate)
	mux.HandleFunc("GET /api/sources", h.ListSources)
	mux.HandleFunc("GET /api/sources/{id}", h.GetSource)
}

// ListGalaxies handles GET /api/galaxies.
func (h *CatalogHandler) ListGalaxies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Galaxies(r.Context(), queryParams(r), pageParam(r))
	if err != nil {
		h.serverError(w, "Failed to list galaxies", err)
		return
	}
	h.writeJSON(w, page)
}

// GetGalaxy handles GET /api/galaxies/{id}.
func (h *CatalogHandler) GetGalaxy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	galaxy, err := h.catalog.GalaxyByID(r.Context(), id)
	if err != nil {
		h.lookupError(w, "galaxy", err)
		return
	}
	h.writeJSON(w, galaxy)
}

// ListSubtractions handles GET /api/subtractions.
func (h *CatalogHandler) ListSubtractions(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Subtractions(r.Context(), queryParams(r), pageParam(r))
	if err != nil {
		h.serverError(w, "Failed to list subtractions", err)
		return
	}
	h.writeJSON(w, page)
}

// GetSubtraction handles GET /api/subtractions/{id}.
func (h *CatalogHandler) GetSubtraction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sub, err := h.catalog.SubtractionByID(r.Context(), id)
	if err != nil {
		h.lookupError(w, "subtraction", err)
		return
	}
	h.writeJSON(w, sub)
}

// ListCandidates handles GET /api/candidates.
func (h *CatalogHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Candidates(r.Context(), queryParams(r), pageParam(r))
	if err != nil {
		h.serverError(w, "Failed to list candidates", err)
		return
	}
	h.writeJSON(w, page)
}

// GetCandidate handles GET /api/candidates/{id}.
func (h *CatalogHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	view, err := h.catalog.CandidateDetail(r.Context(), id)
	if err != nil {
		h.lookupError(w, "candidate", err)
		return
	}
	h.writeJSON(w, view)
}

// ListSources handles GET /api/sources.
func (h *CatalogHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Sources(r.Context(), queryParams(r), pageParam(r))
	if err != nil {
		h.serverError(w, "Failed to list sources", err)
		return
	}
	h.writeJSON(w, page)
}

// GetSource handles GET /api/sources/{id}.
func (h *CatalogHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	source, err := h.catalog.SourceByID(r.Context(), id)
	if err != nil {
		h.lookupError(w, "source", err)
		return
	}
	h.writeJSON(w, source)
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *CatalogHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", msg)
}

func (h *CatalogHandler) lookupError(w http.ResponseWriter, entity string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", entity+" not found")
		return
	}
	h.serverError(w, "Failed to load "+entity, err)
}

// queryParams flattens the URL query to the single-valued parameter map the
// filter specs consume. Repeated parameters keep their first value.
func queryParams(r *http.Request) map[string]string {
	values := r.URL.Query()
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

// pageParam reads the 1-based page number; anything unusable means page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return 0, false
	}
	return id, true
}
