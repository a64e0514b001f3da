package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingOrder() *Order {
	now := time.Now()
	return &Order{
		Status: StatusPending,
		StatusHistory: []StatusEntry{
			{Status: StatusPending, Timestamp: now, Note: "Order placed"},
		},
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	o := newPendingOrder()

	require.NoError(t, o.Transition(StatusConfirmed, "payment received"))
	require.NoError(t, o.Transition(StatusProcessing, ""))

	assert.Equal(t, StatusProcessing, o.Status)
	require.Len(t, o.StatusHistory, 3)
	// current status always equals the most recent history entry
	assert.Equal(t, o.Status, o.StatusHistory[len(o.StatusHistory)-1].Status)
	assert.Equal(t, "payment received", o.StatusHistory[1].Note)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	o := newPendingOrder()

	err := o.Transition("lost-in-warehouse", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	// order unchanged
	assert.Equal(t, StatusPending, o.Status)
	assert.Len(t, o.StatusHistory, 1)
}

func TestDeliveredIsTerminal(t *testing.T) {
	o := newPendingOrder()
	require.NoError(t, o.Transition(StatusConfirmed, ""))
	require.NoError(t, o.Transition(StatusProcessing, ""))
	require.NoError(t, o.Transition(StatusShipped, ""))
	require.NoError(t, o.Transition(StatusDelivered, ""))

	// no way back out of delivered, shipped included
	err := o.Transition(StatusShipped, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusDelivered, o.Status)
}

func TestSideExitsFromNonTerminalStates(t *testing.T) {
	for _, from := range []string{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped} {
		for _, exit := range []string{StatusCancelled, StatusReturned, StatusRefunded} {
			o := &Order{Status: from, StatusHistory: []StatusEntry{{Status: from}}}
			assert.NoError(t, o.Transition(exit, ""), "%s -> %s", from, exit)
		}
	}
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	for _, terminal := range []string{StatusDelivered, StatusCancelled, StatusReturned, StatusRefunded} {
		o := &Order{Status: terminal, StatusHistory: []StatusEntry{{Status: terminal}}}
		for _, target := range []string{StatusPending, StatusConfirmed, StatusShipped, StatusRefunded} {
			assert.ErrorIs(t, o.Transition(target, ""), ErrInvalidStatus, "%s -> %s", terminal, target)
		}
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	o := newPendingOrder()
	assert.ErrorIs(t, o.Transition(StatusPending, ""), ErrInvalidStatus)
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusShipped))
	assert.False(t, IsValidStatus("SHIPPED"))
	assert.False(t, IsValidStatus(""))
}
