package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
)

func TestLegalTransitions(t *testing.T) {
	legal := []struct{ from, to model.MessageState }{
		{model.StateQueued, model.StateSending},
		{model.StateSending, model.StateSent},
		{model.StateSending, model.StateFailed},
		{model.StateSending, model.StateUndlvd},
		{model.StateSent, model.StateDelivered},
		{model.StateSent, model.StateFailed},
		{model.StateSent, model.StateUndlvd},
		{model.StateDelivered, model.StateRead},
	}
	for _, tc := range legal {
		assert.True(t, model.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
		assert.NoError(t, model.ValidateTransition(tc.from, tc.to))
	}
}

func TestIllegalTransitions(t *testing.T) {
	illegal := []struct{ from, to model.MessageState }{
		{model.StateQueued, model.StateSent},
		{model.StateQueued, model.StateDelivered},
		{model.StateSending, model.StateRead},
		{model.StateSent, model.StateQueued},
		{model.StateDelivered, model.StateSent},
		{model.StateRead, model.StateDelivered},
		{model.StateFailed, model.StateSending},
		{model.StateUndlvd, model.StateSent},
	}
	for _, tc := range illegal {
		assert.False(t, model.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)

		err := model.ValidateTransition(tc.from, tc.to)
		var invalid *appErrors.InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "%s -> %s", tc.from, tc.to)
	}
}

func TestSelfTransitionAlwaysLegal(t *testing.T) {
	for _, s := range model.AllMessageStates {
		assert.True(t, model.CanTransition(s, s), "%s -> %s", s, s)
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := map[model.MessageState]bool{
		model.StateRead:   true,
		model.StateFailed: true,
		model.StateUndlvd: true,
	}
	for _, s := range model.AllMessageStates {
		assert.Equal(t, terminal[s], s.Terminal(), "state %s", s)
	}

	// Terminal states admit nothing but themselves.
	for from := range terminal {
		for _, to := range model.AllMessageStates {
			if from == to {
				continue
			}
			assert.False(t, model.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
