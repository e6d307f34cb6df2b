package storage

import (
	"errors"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

// ErrWriteConflict is returned when an obligation's underlying records changed
// concurrently (e.g. a manual cash confirmation landed between the read and
// the write). The caller skips that obligation and moves on.
var ErrWriteConflict = errors.New("obligation changed concurrently")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	ObligationRepository
	NotificationRepository
	ReconRunRepository
	Close() error
}

// ObligationRepository handles booking/payment state for reconciliation
type ObligationRepository interface {
	// ListEligibleObligations returns all obligations eligible for matching:
	// bank-transfer payments still pending on bookings that are not cancelled,
	// oldest pending first.
	ListEligibleObligations() ([]*booking.Obligation, error)

	// ApplyMatch atomically records a matched transaction: payment goes to
	// success with the transaction id and timestamp, the booking's payment
	// status goes to paid, and a still-pending booking is confirmed. Returns
	// ErrWriteConflict if the payment is no longer pending.
	ApplyMatch(bookingCode, transactionID string, transactionTime time.Time) error

	// CreateBooking inserts a booking record
	CreateBooking(b *Booking) error

	// CreatePayment inserts a payment record
	CreatePayment(p *Payment) error

	// GetBooking retrieves a booking by code, ErrNotFound if absent
	GetBooking(bookingCode string) (*Booking, error)

	// GetPayment retrieves the payment for a booking, ErrNotFound if absent
	GetPayment(bookingCode string) (*Payment, error)
}

// NotificationRepository handles the append-only notification sink
type NotificationRepository interface {
	// CreateNotification appends a notification record
	CreateNotification(n *Notification) error

	// ListNotifications returns recent notifications, optionally filtered by recipient
	ListNotifications(recipient string, limit int) ([]Notification, error)
}

// ReconRunRepository handles reconciliation run tracking
type ReconRunRepository interface {
	// StartReconRun records the start of a run and returns the run ID
	StartReconRun(trigger string) (int64, error)

	// CompleteReconRun records the completion of a run
	CompleteReconRun(runID int64, scanned, matched, failed int) error

	// ListReconRuns returns recent runs
	ListReconRuns(limit int) ([]ReconRun, error)

	// GetReconRun retrieves a run by ID, nil if absent
	GetReconRun(runID int64) (*ReconRun, error)

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}
