package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextHappyPath(t *testing.T) {
	s := StateIdle

	s, err := Next(s, EventSelectPlans)
	require.NoError(t, err)
	assert.Equal(t, StatePlanSelection, s)

	s, err = Next(s, EventChoosePlan)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPayment, s)

	s, err = Next(s, EventWindowElapsed)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingScreenshot, s)

	s, err = Next(s, EventPhotoReceived)
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, s)

	s, err = Next(s, EventDecide)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s)
}

func TestPhotoAcceptedWhileAwaitingPayment(t *testing.T) {
	// Paying right before the window closes must still work.
	s, err := Next(StateAwaitingPayment, EventPhotoReceived)
	require.NoError(t, err)
	assert.Equal(t, StatePendingApproval, s)
}

func TestChoosePlanOverwritesAnyState(t *testing.T) {
	for _, from := range []State{StateIdle, StatePlanSelection, StateAwaitingPayment, StateAwaitingScreenshot, StatePendingApproval} {
		s, err := Next(from, EventChoosePlan)
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, StateAwaitingPayment, s)
	}
}

func TestCancelFromAnyState(t *testing.T) {
	for _, from := range []State{StateIdle, StatePlanSelection, StateAwaitingPayment, StateAwaitingScreenshot, StatePendingApproval} {
		s, err := Next(from, EventCancel)
		require.NoError(t, err)
		assert.Equal(t, StateIdle, s)
	}
}

func TestWindowElapsedOnlyFromAwaitingPayment(t *testing.T) {
	for _, from := range []State{StateIdle, StatePlanSelection, StateAwaitingScreenshot, StatePendingApproval} {
		s, err := Next(from, EventWindowElapsed)
		require.Error(t, err)
		assert.Equal(t, from, s, "state must not move on rejected event")

		var inv *ErrInvalidTransition
		require.ErrorAs(t, err, &inv)
		assert.Equal(t, from, inv.From)
	}
}

func TestDecideRequiresPendingApproval(t *testing.T) {
	_, err := Next(StateAwaitingScreenshot, EventDecide)
	require.Error(t, err)

	_, err = Next(StateIdle, EventDecide)
	require.Error(t, err)
}

func TestPhotoRejectedOutsidePaymentStates(t *testing.T) {
	for _, from := range []State{StateIdle, StatePlanSelection, StatePendingApproval} {
		_, err := Next(from, EventPhotoReceived)
		require.Error(t, err, "from %s", from)
	}
}

func TestInPaymentFlow(t *testing.T) {
	assert.False(t, InPaymentFlow(StateIdle))
	assert.False(t, InPaymentFlow(StatePlanSelection))
	assert.True(t, InPaymentFlow(StateAwaitingPayment))
	assert.True(t, InPaymentFlow(StateAwaitingScreenshot))
	assert.True(t, InPaymentFlow(StatePendingApproval))
}
