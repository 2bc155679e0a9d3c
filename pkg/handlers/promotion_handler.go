package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/apperrors"
	"github.com/disparu-project/disparu-engine/pkg/services"
)

// PromotionHandler serves the candidate promotion endpoint.
type PromotionHandler struct {
	promotion *services.PromotionService
	logger    *zap.Logger
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(promotion *services.PromotionService, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{promotion: promotion, logger: logger}
}

// RegisterRoutes registers the promotion route on the given mux.
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/candidates/{id}/promote", h.PromoteCandidate)
}

// PromoteCandidate handles POST /api/candidates/{id}/promote. An optional
// source_type query parameter overrides the classifier; unknown labels are
// ignored. A candidate already matched to existing sources yields 409 with
// the blocking names, a missing candidate 404.
func (h *PromotionHandler) PromoteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	result, err := h.promotion.Promote(r.Context(), id, r.URL.Query().Get("source_type"))
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateName) {
			_ = ErrorResponse(w, http.StatusConflict, "duplicate_name",
				"source name already taken, retry the promotion")
			return
		}
		h.logger.Error("Failed to promote candidate", zap.Int64("candidate_id", id), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to promote candidate")
		return
	}

	switch result.Status {
	case services.StatusNotFound:
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "candidate not found")
	case services.StatusAlreadyMatched:
		if err := WriteJSON(w, http.StatusConflict, result); err != nil {
			h.logger.Error("Failed to encode response", zap.Error(err))
		}
	default:
		if err := WriteJSON(w, http.StatusOK, result); err != nil {
			h.logger.Error("Failed to encode response", zap.Error(err))
		}
	}
}
