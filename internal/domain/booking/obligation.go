package booking

import "time"

// Obligation is a pending bank-transfer payment awaiting confirmation,
// a derived view over a booking and its payment record. Obligations are
// read fresh at the start of every reconciliation run; they are never
// cached across runs because external actors (e.g. a manual cash
// confirmation) may change the underlying records between ticks.
type Obligation struct {
	BookingCode    string // globally unique, immutable; customers put it in the transfer description
	UserID         string
	ExpectedAmount int64 // minor currency units, positive
	Method         PaymentMethod
	PaymentState   PaymentState
	BookingStatus  Status
	CreatedAt      time.Time // payment creation time, drives oldest-pending-first ordering
}

// Eligible reports whether the obligation should be considered for matching:
// a pending bank-transfer payment on a booking that is not cancelled.
func (o *Obligation) Eligible() bool {
	return o.PaymentState == PaymentStatePending &&
		o.BookingStatus != StatusCancelled &&
		o.Method == MethodBanking
}
