package handlers

import (
	"net/http"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/api/dto"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// ObligationsHandler handles eligible-obligation HTTP requests.
type ObligationsHandler struct {
	*Base
}

// NewObligationsHandler creates a new obligations handler.
func NewObligationsHandler(repo storage.Repository) *ObligationsHandler {
	return &ObligationsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/obligations - returns obligations awaiting a match.
func (h *ObligationsHandler) List(w http.ResponseWriter, r *http.Request) {
	obligations, err := h.repo.ListEligibleObligations()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ObligationListResponse{
		Obligations: make([]dto.ObligationResponse, 0, len(obligations)),
		Count:       len(obligations),
	}

	for _, ob := range obligations {
		response.Obligations = append(response.Obligations, dto.ObligationResponse{
			BookingCode:    ob.BookingCode,
			UserID:         ob.UserID,
			ExpectedAmount: ob.ExpectedAmount,
			CreatedAt:      ob.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
