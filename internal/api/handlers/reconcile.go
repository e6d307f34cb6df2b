package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/fieldbook-vn/recon-backend/internal/api/dto"
	"github.com/fieldbook-vn/recon-backend/internal/application/recon"
)

// Trigger starts a reconciliation run on demand.
type Trigger interface {
	TriggerNow(ctx context.Context) (*recon.Summary, error)
}

// ReconcileHandler handles manual reconciliation trigger requests.
type ReconcileHandler struct {
	*Base
	trigger Trigger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(base *Base, trigger Trigger) *ReconcileHandler {
	return &ReconcileHandler{
		Base:    base,
		trigger: trigger,
	}
}

// Trigger handles POST /api/reconcile - runs a reconciliation pass now.
// Returns 409 if a run is already executing.
func (h *ReconcileHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	summary, err := h.trigger.TriggerNow(r.Context())
	if err != nil {
		if errors.Is(err, recon.ErrRunInProgress) {
			h.WriteError(w, http.StatusConflict, dto.ConflictError("a reconciliation run is already in progress"))
			return
		}
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, dto.SummaryResponse{
		Scanned: summary.Scanned,
		Matched: summary.Matched,
		Failed:  summary.Failed,
	})
}
