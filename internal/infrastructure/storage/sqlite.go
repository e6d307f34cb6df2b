package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

// Storage provides SQLite database access for bookings, payments,
// notifications and reconciliation runs. It implements the Repository
// interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// ListEligibleObligations returns pending bank-transfer obligations on
// non-cancelled bookings, oldest pending first.
func (s *Storage) ListEligibleObligations() ([]*booking.Obligation, error) {
	query := `
	SELECT p.booking_code, b.user_id, p.amount, p.method, p.status, b.status, p.created_at
	FROM payments p
	JOIN bookings b ON b.booking_code = p.booking_code
	WHERE p.method = ? AND p.status = ? AND b.status != ?
	ORDER BY p.created_at ASC, p.id ASC
	`

	rows, err := s.db.Query(query,
		string(booking.MethodBanking),
		string(booking.PaymentStatePending),
		string(booking.StatusCancelled),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var obligations []*booking.Obligation
	for rows.Next() {
		var ob booking.Obligation
		var method, paymentState, bookingStatus string
		err := rows.Scan(
			&ob.BookingCode,
			&ob.UserID,
			&ob.ExpectedAmount,
			&method,
			&paymentState,
			&bookingStatus,
			&ob.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		ob.Method = booking.PaymentMethod(method)
		if ob.PaymentState, err = booking.ParsePaymentState(paymentState); err != nil {
			return nil, err
		}
		if ob.BookingStatus, err = booking.ParseStatus(bookingStatus); err != nil {
			return nil, err
		}

		obligations = append(obligations, &ob)
	}

	return obligations, rows.Err()
}

// ApplyMatch records a matched transaction as one transaction: payment to
// success, booking payment status to paid, and a still-pending booking to
// confirmed. The WHERE status = 'pending' guard makes the write optimistic;
// zero affected rows means someone else got there first.
func (s *Storage) ApplyMatch(bookingCode, transactionID string, transactionTime time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()

	result, err := tx.Exec(`
		UPDATE payments
		SET status = ?, transaction_id = ?, paid_at = ?, updated_at = ?
		WHERE booking_code = ? AND status = ?
	`,
		string(booking.PaymentStateSuccess),
		transactionID,
		transactionTime,
		now,
		bookingCode,
		string(booking.PaymentStatePending),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: payment for booking %s is not pending", ErrWriteConflict, bookingCode)
	}

	result, err = tx.Exec(`
		UPDATE bookings
		SET payment_status = ?, updated_at = ?
		WHERE booking_code = ?
	`,
		string(booking.PaymentStatusPaid),
		now,
		bookingCode,
	)
	if err != nil {
		return err
	}

	if affected, err = result.RowsAffected(); err != nil {
		return err
	} else if affected == 0 {
		return fmt.Errorf("%w: booking %s not found", ErrWriteConflict, bookingCode)
	}

	// Only a pending booking advances to confirmed; cancelled or already
	// advanced bookings are left untouched.
	_, err = tx.Exec(`
		UPDATE bookings
		SET status = ?, updated_at = ?
		WHERE booking_code = ? AND status = ?
	`,
		string(booking.StatusConfirmed),
		now,
		bookingCode,
		string(booking.StatusPending),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// CreateBooking inserts a booking record
func (s *Storage) CreateBooking(b *Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	_, err := s.db.Exec(`
		INSERT INTO bookings (booking_code, user_id, field_id, status, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		b.BookingCode,
		b.UserID,
		b.FieldID,
		string(b.Status),
		string(b.PaymentStatus),
		b.CreatedAt,
		b.UpdatedAt,
	)

	return err
}

// CreatePayment inserts a payment record
func (s *Storage) CreatePayment(p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	result, err := s.db.Exec(`
		INSERT INTO payments (booking_code, method, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		p.BookingCode,
		string(p.Method),
		p.Amount,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	p.ID, err = result.LastInsertId()
	return err
}

// GetBooking retrieves a booking by code
func (s *Storage) GetBooking(bookingCode string) (*Booking, error) {
	query := `
	SELECT booking_code, user_id, field_id, status, payment_status, created_at, updated_at
	FROM bookings WHERE booking_code = ?
	`

	b := &Booking{}
	var status, paymentStatus string
	err := s.db.QueryRow(query, bookingCode).Scan(
		&b.BookingCode,
		&b.UserID,
		&b.FieldID,
		&status,
		&paymentStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Status = booking.Status(status)
	b.PaymentStatus = booking.PaymentStatus(paymentStatus)

	return b, nil
}

// GetPayment retrieves the payment for a booking
func (s *Storage) GetPayment(bookingCode string) (*Payment, error) {
	query := `
	SELECT id, booking_code, method, amount, status, transaction_id, paid_at, created_at, updated_at
	FROM payments WHERE booking_code = ?
	`

	p := &Payment{}
	var method, status string
	var transactionID sql.NullString
	var paidAt sql.NullTime
	err := s.db.QueryRow(query, bookingCode).Scan(
		&p.ID,
		&p.BookingCode,
		&method,
		&p.Amount,
		&status,
		&transactionID,
		&paidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Method = booking.PaymentMethod(method)
	p.Status = booking.PaymentState(status)
	if transactionID.Valid {
		p.TransactionID = transactionID.String
	}
	if paidAt.Valid {
		t := paidAt.Time
		p.PaidAt = &t
	}

	return p, nil
}

// CreateNotification appends a notification record
func (s *Storage) CreateNotification(n *Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO notifications (id, recipient, title, message, type, related_id, related_model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID,
		n.Recipient,
		n.Title,
		n.Message,
		n.Type,
		n.RelatedID,
		n.RelatedModel,
		n.CreatedAt,
	)

	return err
}

// ListNotifications returns recent notifications, newest first
func (s *Storage) ListNotifications(recipient string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, recipient, title, message, type, related_id, related_model, created_at
	FROM notifications
	WHERE (? = '' OR recipient = ?)
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, recipient, recipient, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(
			&n.ID,
			&n.Recipient,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.RelatedID,
			&n.RelatedModel,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// StartReconRun records the start of a reconciliation run
func (s *Storage) StartReconRun(trigger string) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO recon_runs (trigger_source, status) VALUES (?, 'running')
	`, trigger)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CompleteReconRun records the completion of a reconciliation run
func (s *Storage) CompleteReconRun(runID int64, scanned, matched, failed int) error {
	query := `
		UPDATE recon_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    scanned = ?,
		    matched = ?,
		    failed = ?,
		    status = CASE WHEN ? > 0 THEN 'completed_with_errors' ELSE 'completed' END
		WHERE id = ?
	`

	_, err := s.db.Exec(query, scanned, matched, failed, failed, runID)
	return err
}

// ListReconRuns returns recent runs, newest first
func (s *Storage) ListReconRuns(limit int) ([]ReconRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, trigger_source, started_at, COALESCE(completed_at, ''), scanned, matched, failed, status
	FROM recon_runs
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ReconRun
	for rows.Next() {
		var run ReconRun
		err := rows.Scan(
			&run.ID,
			&run.Trigger,
			&run.StartedAt,
			&run.CompletedAt,
			&run.Scanned,
			&run.Matched,
			&run.Failed,
			&run.Status,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetReconRun retrieves a run by ID; nil when absent
func (s *Storage) GetReconRun(runID int64) (*ReconRun, error) {
	query := `
	SELECT id, trigger_source, started_at, COALESCE(completed_at, ''), scanned, matched, failed, status
	FROM recon_runs WHERE id = ?
	`

	run := &ReconRun{}
	err := s.db.QueryRow(query, runID).Scan(
		&run.ID,
		&run.Trigger,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Scanned,
		&run.Matched,
		&run.Failed,
		&run.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// GetStats returns aggregate reconciliation statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COUNT(*) as total_runs,
		COALESCE(SUM(matched), 0) as total_matched,
		COALESCE(SUM(failed), 0) as total_failed
	FROM recon_runs
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalRuns,
		&stats.TotalMatched,
		&stats.TotalFailed,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*)
		FROM payments p
		JOIN bookings b ON b.booking_code = p.booking_code
		WHERE p.method = ? AND p.status = ? AND b.status != ?
	`,
		string(booking.MethodBanking),
		string(booking.PaymentStatePending),
		string(booking.StatusCancelled),
	).Scan(&stats.PendingObligations)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ?
	`, string(booking.PaymentStateSuccess)).Scan(&stats.MatchedAmount)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
