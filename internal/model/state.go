// internal/model/state.go
package model

import (
	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

type MessageState string

const (
	StateQueued    MessageState = "QUEUED"
	StateSending   MessageState = "SENDING"
	StateSent      MessageState = "SENT"
	StateDelivered MessageState = "DELIVERED"
	StateRead      MessageState = "READ"
	StateFailed    MessageState = "FAILED"
	StateUndlvd    MessageState = "UNDLVD"
)

// AllMessageStates in lifecycle order, used for status aggregation.
var AllMessageStates = []MessageState{
	StateQueued, StateSending, StateSent, StateDelivered, StateRead, StateFailed, StateUndlvd,
}

var allowedTransitions = map[MessageState][]MessageState{
	StateQueued:    {StateSending},
	StateSending:   {StateSent, StateFailed, StateUndlvd},
	StateSent:      {StateDelivered, StateFailed, StateUndlvd},
	StateDelivered: {StateRead},
	StateRead:      {},
	StateFailed:    {},
	StateUndlvd:    {},
}

// Terminal reports whether a state accepts no further transitions.
func (s MessageState) Terminal() bool {
	return s == StateRead || s == StateFailed || s == StateUndlvd
}

// CanTransition reports whether from -> to is legal. Re-applying the current
// state is always permitted so that replayed provider callbacks stay
// idempotent.
func CanTransition(from, to MessageState) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError for illegal moves.
func ValidateTransition(from, to MessageState) error {
	if !CanTransition(from, to) {
		return appErrors.NewInvalidTransition(string(from), string(to))
	}
	return nil
}
