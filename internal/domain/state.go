package domain

import "fmt"

// ImportState is the position of an import job in the ingestion pipeline.
type ImportState string

const (
	StateInput     ImportState = "input"
	StateFetching  ImportState = "fetching"
	StateParsing   ImportState = "parsing"
	StateMatching  ImportState = "matching"
	StateReviewing ImportState = "reviewing"
	StateQueued    ImportState = "queued"
	StateFailed    ImportState = "failed"
	StateDone      ImportState = "done"
	StateCanceled  ImportState = "canceled"
)

// ImportEvent is a pipeline occurrence that may advance an import job.
type ImportEvent string

const (
	EventStart        ImportEvent = "start"
	EventStandardized ImportEvent = "standardized"
	EventStructured   ImportEvent = "structured"
	EventMatched      ImportEvent = "matched"
	EventSaved        ImportEvent = "saved"
	EventFailed       ImportEvent = "failed"
	EventQueued       ImportEvent = "queued"
	EventRetried      ImportEvent = "retried"
	EventCanceled     ImportEvent = "canceled"
)

// transitions is the full state machine:
//
//	input -> fetching -> parsing -> matching -> reviewing -> done
//
// with queued (rate-limited structuring), failed, and canceled as the off-path
// states. Persistence failures during save do not appear here: the job stays
// in reviewing so the user can retry the save without re-running extraction.
var transitions = map[ImportState]map[ImportEvent]ImportState{
	StateInput: {
		EventStart:    StateFetching,
		EventCanceled: StateCanceled,
	},
	StateFetching: {
		EventStandardized: StateParsing,
		EventFailed:       StateFailed,
		EventCanceled:     StateCanceled,
	},
	StateParsing: {
		EventStructured: StateMatching,
		EventQueued:     StateQueued,
		EventFailed:     StateFailed,
		EventCanceled:   StateCanceled,
	},
	StateQueued: {
		EventRetried:  StateParsing,
		EventFailed:   StateFailed,
		EventCanceled: StateCanceled,
	},
	StateMatching: {
		EventMatched:  StateReviewing,
		EventFailed:   StateFailed,
		EventCanceled: StateCanceled,
	},
	StateReviewing: {
		EventSaved:    StateDone,
		EventCanceled: StateCanceled,
	},
	StateFailed: {
		EventRetried:  StateFetching,
		EventCanceled: StateCanceled,
	},
}

// NextState applies event to state and returns the resulting state. It is a
// pure function; callers persist the result on the import job.
func NextState(state ImportState, event ImportEvent) (ImportState, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, state)
	}
	return next, nil
}

// Terminal reports whether the state admits no further transitions.
func (s ImportState) Terminal() bool {
	return s == StateDone || s == StateCanceled
}
