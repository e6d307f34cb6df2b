package storage

import (
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

// Booking is a persisted field booking.
type Booking struct {
	BookingCode   string                `json:"booking_code"`
	UserID        string                `json:"user_id"`
	FieldID       string                `json:"field_id"`
	Status        booking.Status        `json:"status"`
	PaymentStatus booking.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Payment is the payment record behind a booking.
type Payment struct {
	ID            int64                 `json:"id"`
	BookingCode   string                `json:"booking_code"`
	Method        booking.PaymentMethod `json:"method"`
	Amount        int64                 `json:"amount"` // minor currency units
	Status        booking.PaymentState  `json:"status"`
	TransactionID string                `json:"transaction_id,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Notification is an append-only record for the notification sink.
// Delivery mechanics are a collaborator's concern; this service only writes.
type Notification struct {
	ID           string    `json:"id"`
	Recipient    string    `json:"recipient"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Type         string    `json:"type"`
	RelatedID    string    `json:"related_id"`
	RelatedModel string    `json:"related_model"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReconRun is the audit record of one reconciliation tick.
type ReconRun struct {
	ID          int64  `json:"id"`
	Trigger     string `json:"trigger"` // "schedule" or "manual"
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Scanned     int    `json:"scanned"`
	Matched     int    `json:"matched"`
	Failed      int    `json:"failed"`
	Status      string `json:"status"`
}

// Stats holds aggregate reconciliation statistics.
type Stats struct {
	TotalRuns          int   `json:"total_runs"`
	TotalMatched       int   `json:"total_matched"`
	TotalFailed        int   `json:"total_failed"`
	PendingObligations int   `json:"pending_obligations"`
	MatchedAmount      int64 `json:"matched_amount"`
}
