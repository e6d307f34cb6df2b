package handlers

import (
	"net/http"

	"github.com/fieldbook-vn/recon-backend/internal/api/dto"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// StatsHandler handles aggregate statistics requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo),
	}
}

// Get handles GET /api/stats - returns aggregate reconciliation statistics.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		TotalRuns:          stats.TotalRuns,
		TotalMatched:       stats.TotalMatched,
		TotalFailed:        stats.TotalFailed,
		PendingObligations: stats.PendingObligations,
		MatchedAmount:      stats.MatchedAmount,
	})
}
