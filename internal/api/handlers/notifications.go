package handlers

import (
	"net/http"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/api/dto"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// NotificationsHandler handles notification HTTP requests.
type NotificationsHandler struct {
	*Base
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(repo storage.Repository) *NotificationsHandler {
	return &NotificationsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/notifications - returns recent notification records.
// Supports optional recipient and limit query parameters.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	recipient := r.URL.Query().Get("recipient")
	limit := ParseIntParam(r, "limit", 50)

	notifications, err := h.repo.ListNotifications(recipient, limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(notifications)),
		Count:         len(notifications),
	}

	for _, n := range notifications {
		response.Notifications = append(response.Notifications, dto.NotificationResponse{
			ID:           n.ID,
			Recipient:    n.Recipient,
			Title:        n.Title,
			Message:      n.Message,
			Type:         n.Type,
			RelatedID:    n.RelatedID,
			RelatedModel: n.RelatedModel,
			CreatedAt:    n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	h.WriteJSON(w, http.StatusOK, response)
}
