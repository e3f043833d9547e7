package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

// AdviceHandler serves per-client recommendation queries.
type AdviceHandler struct {
	recRepo contracts.RecommendationRepository
	logger  *logger.Logger
}

func NewAdviceHandler(recRepo contracts.RecommendationRepository, log *logger.Logger) *AdviceHandler {
	return &AdviceHandler{
		recRepo: recRepo,
		logger:  log,
	}
}

// GetRecommendations returns a client's latest recommendation set,
// ranked by confidence.
func (h *AdviceHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientID"]

	recs, err := h.recRepo.GetByClient(r.Context(), clientID)
	if err != nil {
		h.logger.WithError(err).WithField("client_id", clientID).Error("Recommendation lookup failed")
		respondError(w, http.StatusInternalServerError, "recommendation lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"client_id":       clientID,
		"count":           len(recs),
		"recommendations": recs,
	})
}
