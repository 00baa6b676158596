package step

import (
	"fmt"
	"slices"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
)

// Level controls how a step is surfaced to the player.
type Level int

const (
	Silent Level = iota
	Info
	Interactive
)

func (l Level) String() string {
	switch l {
	case Silent:
		return "silent"
	case Info:
		return "info"
	case Interactive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Selection constrains the cards a player may pick for an interactive step.
// PoolFunc, when set, computes the pool from the snapshot at the moment the
// step is reached and overrides Pool.
type Selection struct {
	Prompt     string
	Pool       []string
	PoolFunc   func(state.Snapshot) []string
	Min, Max   int
	Cancelable bool
}

// Resolve fixes the pool against s.
func (sel Selection) Resolve(s state.Snapshot) Selection {
	if sel.PoolFunc != nil {
		sel.Pool = sel.PoolFunc(s)
		sel.PoolFunc = nil
	}
	sel.Pool = slices.Clone(sel.Pool)
	if sel.Max == 0 {
		sel.Max = len(sel.Pool)
	}
	return sel
}

// Check verifies a submitted selection against a resolved constraint.
func (sel Selection) Check(ids []string) error {
	if len(ids) < sel.Min || len(ids) > sel.Max {
		return fmt.Errorf("%w: picked %d, need %d-%d", ErrInvalidSelection, len(ids), sel.Min, sel.Max)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s picked twice", ErrInvalidSelection, id)
		}
		seen[id] = true
		if !slices.Contains(sel.Pool, id) {
			return fmt.Errorf("%w: %s is not a candidate", ErrInvalidSelection, id)
		}
	}
	return nil
}

// Update is the outcome of applying one step.
type Update struct {
	Success bool
	State   state.Snapshot
	Message string
	Err     error
	Events  []event.GameEvent
}

// Ok builds a successful update.
func Ok(s state.Snapshot, message string, events ...event.GameEvent) Update {
	return Update{Success: true, State: s, Message: message, Events: events}
}

// Fail builds a failed update that leaves s as the committed state.
func Fail(s state.Snapshot, err error) Update {
	return Update{State: s, Err: err}
}

// Action applies a step. It must be pure: the result depends only on its
// arguments and the input snapshot is not modified.
type Action func(s state.Snapshot, selected []string) Update

// AtomicStep is one discrete, possibly suspending state transition.
type AtomicStep struct {
	ID          string
	Summary     string
	Description string
	Level       Level
	Selection   *Selection
	Action      Action
}

// Apply runs the step's action. A nil action leaves the state unchanged.
func (st AtomicStep) Apply(s state.Snapshot, selected []string) Update {
	if st.Action == nil {
		return Ok(s, "")
	}
	return st.Action(s, selected)
}

// Transform wraps a selection-free snapshot function as an Action.
func Transform(fn func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error)) Action {
	return func(s state.Snapshot, _ []string) Update {
		next, events, err := fn(s)
		if err != nil {
			return Fail(s, err)
		}
		return Ok(next, "", events...)
	}
}
