package engine

import (
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// OutcomeKind tells the caller what to do next.
type OutcomeKind int

const (
	// Done means the engine is idle and waiting for the next command.
	Done OutcomeKind = iota
	// NeedsSelection means Resume or Cancel must be called with Token.
	NeedsSelection
	// Rejected means the command failed validation and nothing changed.
	Rejected
)

func (k OutcomeKind) String() string {
	switch k {
	case NeedsSelection:
		return "needs_selection"
	case Rejected:
		return "rejected"
	default:
		return "done"
	}
}

// Outcome is what a session operation produced.
type Outcome struct {
	Kind       OutcomeKind
	State      state.Snapshot
	Validation validation.Result

	// Set for NeedsSelection.
	Prompt    string
	Selection *step.Selection
	Token     string

	// ChainOpen is true when links wait for responses; Responses lists what
	// can still be chained.
	ChainOpen bool
	Responses []chain.Candidate

	Message string
	Err     error
}
