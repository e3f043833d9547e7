package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

// SignalsHandler serves technical signal and sector strength queries.
type SignalsHandler struct {
	signalRepo contracts.SignalRepository
	sectorRepo contracts.SectorRepository
	logger     *logger.Logger
}

func NewSignalsHandler(signalRepo contracts.SignalRepository, sectorRepo contracts.SectorRepository, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{
		signalRepo: signalRepo,
		sectorRepo: sectorRepo,
		logger:     log,
	}
}

// GetSignal returns the latest analysis for one instrument.
func (h *SignalsHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	analysis, err := h.signalRepo.GetLatestAnalysis(r.Context(), symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Signal lookup failed")
		respondError(w, http.StatusNotFound, "no analysis for symbol")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// GetSectors returns the sector strength ranking for a date
// (default today), best sector first.
func (h *SignalsHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	date := time.Now().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		date = parsed
	}

	strengths, err := h.sectorRepo.GetStrengths(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Sector strength lookup failed")
		respondError(w, http.StatusInternalServerError, "sector lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"sectors": strengths,
	})
}
