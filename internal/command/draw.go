package command

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/effect"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// Draw moves Count cards from the deck to the hand immediately.
type Draw struct {
	env   *Env
	Count int
}

func NewDraw(env *Env, count int) *Draw {
	return &Draw{env: env, Count: count}
}

func (c *Draw) Name() string { return "draw" }

func (c *Draw) CanExecute(s state.Snapshot) validation.Result {
	if r := notOver(s); !r.Valid {
		return r
	}
	if c.Count < 1 {
		return validation.Failure(validation.CodeInvalidCount, "count", c.Count)
	}
	if r := chainClosed(s); !r.Valid {
		return r
	}
	if len(s.Zones.Deck) < c.Count {
		return validation.Failure(validation.CodeInsufficientDeck, "required", c.Count, "available", len(s.Zones.Deck))
	}
	return validation.Success()
}

func (c *Draw) Execute(s state.Snapshot) Result {
	next, drawn, err := s.Draw(c.Count)
	if err != nil {
		return failed(s, err)
	}
	return Result{
		Success: true,
		State:   next,
		Message: fmt.Sprintf("drew %d", len(drawn)),
		Events:  effect.DrawEvents(next, drawn),
	}
}

// AdvancePhase moves to the next phase. Leaving the End Phase starts the next
// turn and queues its normal draw.
type AdvancePhase struct {
	env *Env
}

func NewAdvancePhase(env *Env) *AdvancePhase {
	return &AdvancePhase{env: env}
}

func (c *AdvancePhase) Name() string { return "advance_phase" }

func (c *AdvancePhase) CanExecute(s state.Snapshot) validation.Result {
	if r := notOver(s); !r.Valid {
		return r
	}
	if s.ChainOpen() {
		return validation.Failure(validation.CodePhaseTransitionNotAllowed, "phase", s.Phase, "links", len(s.Chain))
	}
	return validation.Success()
}

func (c *AdvancePhase) Execute(s state.Snapshot) Result {
	next, newTurn := s.Phase.Next()
	var steps []step.AtomicStep
	if newTurn {
		s = s.NextTurn()
		steps = append(steps, turnDrawStep())
	} else {
		s = s.WithPhase(next)
	}
	return Result{
		Success: true,
		State:   s,
		Message: fmt.Sprintf("turn %d %s", s.Turn, s.Phase),
		Events:  []event.GameEvent{event.New(event.PhaseChanged, s)},
		Steps:   steps,
	}
}

// turnDrawStep is the Draw Phase draw. An empty deck loses the duel.
func turnDrawStep() step.AtomicStep {
	return step.AtomicStep{
		ID:      "turn/draw",
		Summary: "Draw for turn",
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			if len(s.Zones.Deck) == 0 {
				return s.WithResult(state.Result{Over: true, Winner: state.PlayerOpponent, Reason: ReasonDeckOut}), nil, nil
			}
			next, drawn, err := s.Draw(1)
			if err != nil {
				return s, nil, err
			}
			return next, effect.DrawEvents(next, drawn), nil
		}),
	}
}
