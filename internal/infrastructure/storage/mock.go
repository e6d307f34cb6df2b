package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/domain/booking"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	bookings      map[string]*Booking
	payments      map[string]*Payment // keyed by booking_code
	notifications []Notification
	reconRuns     map[int64]*ReconRun
	nextRunID     int64

	// Hooks for test assertions
	ApplyMatchCalled         bool
	AppliedMatches           []string // booking codes in application order
	CreateNotificationCalled bool
	LastNotification         *Notification
	StartReconRunCalled      bool

	// Error injection for testing error paths
	ListEligibleErr       error
	ApplyMatchErr         error
	ApplyMatchErrFor      map[string]error // per-booking-code override
	CreateNotificationErr error
	StartReconRunErr      error
	CompleteReconRunErr   error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		bookings:         make(map[string]*Booking),
		payments:         make(map[string]*Payment),
		notifications:    make([]Notification, 0),
		reconRuns:        make(map[int64]*ReconRun),
		ApplyMatchErrFor: make(map[string]error),
		nextRunID:        1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ListEligibleObligations mirrors the SQL eligibility filter and ordering
func (m *MockRepository) ListEligibleObligations() ([]*booking.Obligation, error) {
	if m.ListEligibleErr != nil {
		return nil, m.ListEligibleErr
	}

	var obligations []*booking.Obligation
	for code, p := range m.payments {
		b, ok := m.bookings[code]
		if !ok {
			continue
		}
		if p.Method != booking.MethodBanking || p.Status != booking.PaymentStatePending {
			continue
		}
		if b.Status == booking.StatusCancelled {
			continue
		}

		obligations = append(obligations, &booking.Obligation{
			BookingCode:    code,
			UserID:         b.UserID,
			ExpectedAmount: p.Amount,
			Method:         p.Method,
			PaymentState:   p.Status,
			BookingStatus:  b.Status,
			CreatedAt:      p.CreatedAt,
		})
	}

	sort.Slice(obligations, func(i, j int) bool {
		if obligations[i].CreatedAt.Equal(obligations[j].CreatedAt) {
			return obligations[i].BookingCode < obligations[j].BookingCode
		}
		return obligations[i].CreatedAt.Before(obligations[j].CreatedAt)
	})

	return obligations, nil
}

// ApplyMatch applies the payment/booking transition in memory
func (m *MockRepository) ApplyMatch(bookingCode, transactionID string, transactionTime time.Time) error {
	m.ApplyMatchCalled = true
	m.AppliedMatches = append(m.AppliedMatches, bookingCode)

	if m.ApplyMatchErr != nil {
		return m.ApplyMatchErr
	}
	if err, ok := m.ApplyMatchErrFor[bookingCode]; ok {
		return err
	}

	p, ok := m.payments[bookingCode]
	if !ok || p.Status != booking.PaymentStatePending {
		return fmt.Errorf("%w: payment for booking %s is not pending", ErrWriteConflict, bookingCode)
	}
	b, ok := m.bookings[bookingCode]
	if !ok {
		return fmt.Errorf("%w: booking %s not found", ErrWriteConflict, bookingCode)
	}

	p.Status = booking.PaymentStateSuccess
	p.TransactionID = transactionID
	t := transactionTime
	p.PaidAt = &t
	b.PaymentStatus = booking.PaymentStatusPaid
	if b.Status == booking.StatusPending {
		b.Status = booking.StatusConfirmed
	}

	return nil
}

// CreateBooking inserts a booking into the in-memory map
func (m *MockRepository) CreateBooking(b *Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	copied := *b
	m.bookings[b.BookingCode] = &copied
	return nil
}

// CreatePayment inserts a payment into the in-memory map
func (m *MockRepository) CreatePayment(p *Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	copied := *p
	m.payments[p.BookingCode] = &copied
	return nil
}

// GetBooking retrieves a booking from the in-memory map
func (m *MockRepository) GetBooking(bookingCode string) (*Booking, error) {
	b, ok := m.bookings[bookingCode]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// GetPayment retrieves a payment from the in-memory map
func (m *MockRepository) GetPayment(bookingCode string) (*Payment, error) {
	p, ok := m.payments[bookingCode]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// CreateNotification appends a notification to the in-memory slice
func (m *MockRepository) CreateNotification(n *Notification) error {
	m.CreateNotificationCalled = true
	m.LastNotification = n
	if m.CreateNotificationErr != nil {
		return m.CreateNotificationErr
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

// ListNotifications returns notifications, newest first
func (m *MockRepository) ListNotifications(recipient string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var result []Notification
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		n := m.notifications[i]
		if recipient != "" && n.Recipient != recipient {
			continue
		}
		result = append(result, n)
	}

	return result, nil
}

// StartReconRun records a run start in memory
func (m *MockRepository) StartReconRun(trigger string) (int64, error) {
	m.StartReconRunCalled = true
	if m.StartReconRunErr != nil {
		return 0, m.StartReconRunErr
	}

	id := m.nextRunID
	m.nextRunID++
	m.reconRuns[id] = &ReconRun{
		ID:        id,
		Trigger:   trigger,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "running",
	}

	return id, nil
}

// CompleteReconRun records a run completion in memory
func (m *MockRepository) CompleteReconRun(runID int64, scanned, matched, failed int) error {
	if m.CompleteReconRunErr != nil {
		return m.CompleteReconRunErr
	}

	run, ok := m.reconRuns[runID]
	if !ok {
		return fmt.Errorf("run %d not found", runID)
	}

	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.Scanned = scanned
	run.Matched = matched
	run.Failed = failed
	if failed > 0 {
		run.Status = "completed_with_errors"
	} else {
		run.Status = "completed"
	}

	return nil
}

// ListReconRuns returns runs, newest first
func (m *MockRepository) ListReconRuns(limit int) ([]ReconRun, error) {
	if limit <= 0 {
		limit = 20
	}

	ids := make([]int64, 0, len(m.reconRuns))
	for id := range m.reconRuns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var runs []ReconRun
	for _, id := range ids {
		if len(runs) >= limit {
			break
		}
		runs = append(runs, *m.reconRuns[id])
	}

	return runs, nil
}

// GetReconRun retrieves a run by ID; nil when absent
func (m *MockRepository) GetReconRun(runID int64) (*ReconRun, error) {
	run, ok := m.reconRuns[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// GetStats aggregates over the in-memory state
func (m *MockRepository) GetStats() (*Stats, error) {
	stats := &Stats{TotalRuns: len(m.reconRuns)}

	for _, run := range m.reconRuns {
		stats.TotalMatched += run.Matched
		stats.TotalFailed += run.Failed
	}

	eligible, _ := m.ListEligibleObligations()
	stats.PendingObligations = len(eligible)

	for _, p := range m.payments {
		if p.Status == booking.PaymentStateSuccess {
			stats.MatchedAmount += p.Amount
		}
	}

	return stats, nil
}
