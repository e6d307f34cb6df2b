package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentState_CanTransition(t *testing.T) {
	assert.True(t, PaymentStatePending.CanTransition(PaymentStateSuccess))
	assert.True(t, PaymentStatePending.CanTransition(PaymentStateFailed))

	// Terminal states have no outgoing edges
	assert.False(t, PaymentStateSuccess.CanTransition(PaymentStatePending))
	assert.False(t, PaymentStateSuccess.CanTransition(PaymentStateFailed))
	assert.False(t, PaymentStateFailed.CanTransition(PaymentStateSuccess))
}

func TestStatus_CanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusConfirmed))
	assert.True(t, StatusPending.CanTransition(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransition(StatusCompleted))

	// A cancelled booking can never be confirmed
	assert.False(t, StatusCancelled.CanTransition(StatusConfirmed))
	assert.False(t, StatusCompleted.CanTransition(StatusConfirmed))
	assert.False(t, StatusConfirmed.CanTransition(StatusPending))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("confirmed")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("bogus")
	assert.Error(t, err)
}

func TestParsePaymentState(t *testing.T) {
	s, err := ParsePaymentState("pending")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatePending, s)

	_, err = ParsePaymentState("PAID")
	assert.Error(t, err)
}
