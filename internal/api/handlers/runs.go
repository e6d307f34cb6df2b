package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fieldbook-vn/recon-backend/internal/api/dto"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent reconciliation runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListReconRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ReconRunListResponse{
		Runs:  make([]dto.ReconRunResponse, 0, len(runs)),
		Count: len(runs),
	}

	for _, run := range runs {
		response.Runs = append(response.Runs, toReconRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetReconRun(id)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	if run == nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("reconciliation run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toReconRunResponse(*run))
}

// toReconRunResponse converts a storage ReconRun to an API response.
func toReconRunResponse(run storage.ReconRun) dto.ReconRunResponse {
	return dto.ReconRunResponse{
		ID:          run.ID,
		Trigger:     run.Trigger,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Scanned:     run.Scanned,
		Matched:     run.Matched,
		Failed:      run.Failed,
		Status:      run.Status,
	}
}
