package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ReconRunResponse represents a reconciliation run in API responses.
type ReconRunResponse struct {
	ID          int64  `json:"id"`
	Trigger     string `json:"trigger"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Scanned     int    `json:"scanned"`
	Matched     int    `json:"matched"`
	Failed      int    `json:"failed"`
	Status      string `json:"status"`
}

// ReconRunListResponse is a list of reconciliation runs.
type ReconRunListResponse struct {
	Runs  []ReconRunResponse `json:"runs"`
	Count int                `json:"count"`
}

// SummaryResponse is returned by the manual reconcile trigger.
type SummaryResponse struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Failed  int `json:"failed"`
}

// ObligationResponse represents one eligible obligation.
type ObligationResponse struct {
	BookingCode    string `json:"booking_code"`
	UserID         string `json:"user_id"`
	ExpectedAmount int64  `json:"expected_amount"`
	CreatedAt      string `json:"created_at"`
}

// ObligationListResponse is a list of eligible obligations.
type ObligationListResponse struct {
	Obligations []ObligationResponse `json:"obligations"`
	Count       int                  `json:"count"`
}

// NotificationResponse represents one notification record.
type NotificationResponse struct {
	ID           string `json:"id"`
	Recipient    string `json:"recipient"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	RelatedID    string `json:"related_id"`
	RelatedModel string `json:"related_model"`
	CreatedAt    string `json:"created_at"`
}

// NotificationListResponse is a list of notifications.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Count         int                    `json:"count"`
}

// StatsResponse holds aggregate reconciliation statistics.
type StatsResponse struct {
	TotalRuns          int   `json:"total_runs"`
	TotalMatched       int   `json:"total_matched"`
	TotalFailed        int   `json:"total_failed"`
	PendingObligations int   `json:"pending_obligations"`
	MatchedAmount      int64 `json:"matched_amount"`
}
