package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(PaymentPending, PaymentComplete))
	assert.True(t, CanTransition(PaymentPending, PaymentFailed))

	// terminal states stay terminal
	assert.False(t, CanTransition(PaymentComplete, PaymentPending))
	assert.False(t, CanTransition(PaymentComplete, PaymentFailed))
	assert.False(t, CanTransition(PaymentFailed, PaymentPending))
	assert.False(t, CanTransition(PaymentFailed, PaymentComplete))

	assert.False(t, CanTransition(PaymentPending, PaymentPending))
	assert.False(t, CanTransition("Unknown", PaymentComplete))
}

func TestPaymentStatusValid(t *testing.T) {
	assert.True(t, PaymentPending.Valid())
	assert.True(t, PaymentComplete.Valid())
	assert.True(t, PaymentFailed.Valid())
	assert.False(t, PaymentStatus("Paid").Valid())
	assert.False(t, PaymentStatus("").Valid())
}
