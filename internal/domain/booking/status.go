// Package booking defines the booking and payment domain model shared by the
// reconciliation engine, the storage layer, and the HTTP API.
//
// Status fields are typed with explicit transition rules so an invalid
// transition (e.g. confirming a cancelled booking) is rejected at validation
// time instead of silently overwriting state.
package booking

import "fmt"

// PaymentMethod identifies how a booking is paid.
type PaymentMethod string

const (
	MethodBanking PaymentMethod = "banking"
	MethodCash    PaymentMethod = "cash"
)

// PaymentState is the state of the underlying payment record.
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

// CanTransition reports whether the payment may move to the target state.
// Pending is the only state with outgoing edges; success and failed are terminal.
func (s PaymentState) CanTransition(to PaymentState) bool {
	switch s {
	case PaymentStatePending:
		return to == PaymentStateSuccess || to == PaymentStateFailed
	default:
		return false
	}
}

// PaymentStatus is the booking's view of its payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CanTransition reports whether the booking may move to the target status.
// Reconciliation only ever uses pending -> confirmed; the remaining edges
// belong to the booking lifecycle collaborators.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// ParseStatus validates a stored status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// ParsePaymentState validates a stored payment state string.
func ParsePaymentState(s string) (PaymentState, error) {
	switch PaymentState(s) {
	case PaymentStatePending, PaymentStateSuccess, PaymentStateFailed:
		return PaymentState(s), nil
	}
	return "", fmt.Errorf("unknown payment state %q", s)
}
