package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/domain"
)

func TestNextState_HappyPath(t *testing.T) {
	steps := []struct {
		event domain.ImportEvent
		want  domain.ImportState
	}{
		{domain.EventStart, domain.StateFetching},
		{domain.EventStandardized, domain.StateParsing},
		{domain.EventStructured, domain.StateMatching},
		{domain.EventMatched, domain.StateReviewing},
		{domain.EventSaved, domain.StateDone},
	}

	state := domain.StateInput
	for _, step := range steps {
		next, err := domain.NextState(state, step.event)
		require.NoError(t, err)
		assert.Equal(t, step.want, next)
		state = next
	}
}

func TestNextState_RateLimitDetour(t *testing.T) {
	next, err := domain.NextState(domain.StateParsing, domain.EventQueued)
	require.NoError(t, err)
	assert.Equal(t, domain.StateQueued, next)

	next, err = domain.NextState(next, domain.EventRetried)
	require.NoError(t, err)
	assert.Equal(t, domain.StateParsing, next)
}

func TestNextState_FailedRetriesFromFetching(t *testing.T) {
	next, err := domain.NextState(domain.StateFailed, domain.EventRetried)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFetching, next)
}

func TestNextState_CancelableEverywhereButTerminal(t *testing.T) {
	cancelable := []domain.ImportState{
		domain.StateInput, domain.StateFetching, domain.StateParsing,
		domain.StateMatching, domain.StateReviewing, domain.StateQueued,
		domain.StateFailed,
	}
	for _, state := range cancelable {
		next, err := domain.NextState(state, domain.EventCanceled)
		require.NoError(t, err, "state %s", state)
		assert.Equal(t, domain.StateCanceled, next)
	}

	_, err := domain.NextState(domain.StateDone, domain.EventCanceled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = domain.NextState(domain.StateCanceled, domain.EventCanceled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestNextState_RejectsInvalidTransitions(t *testing.T) {
	cases := []struct {
		state domain.ImportState
		event domain.ImportEvent
	}{
		{domain.StateInput, domain.EventSaved},
		{domain.StateFetching, domain.EventStructured},
		{domain.StateReviewing, domain.EventStandardized},
		{domain.StateDone, domain.EventRetried},
		{domain.StateReviewing, domain.EventRetried},
	}
	for _, tc := range cases {
		got, err := domain.NextState(tc.state, tc.event)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s on %s", tc.event, tc.state)
		assert.Equal(t, tc.state, got)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, domain.StateDone.Terminal())
	assert.True(t, domain.StateCanceled.Terminal())
	assert.False(t, domain.StateReviewing.Terminal())
	assert.False(t, domain.StateFailed.Terminal())
}
