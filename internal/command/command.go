package command

import (
	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// Env is the per-duel read-only context commands run against.
type Env struct {
	Cards   card.Provider
	Actions *chain.Registry
	Rules   *rule.Registry
	// ForbiddenPieces are the card ids that win the duel when all are in hand.
	ForbiddenPieces []int
}

// Command is one player-initiated operation.
type Command interface {
	Name() string
	CanExecute(s state.Snapshot) validation.Result
	Execute(s state.Snapshot) Result
}

// Result is what a command produced. State is already committed; Steps run
// next, and ChainBlock, when set, is linked onto the chain once Steps finish.
type Result struct {
	Success    bool
	State      state.Snapshot
	Message    string
	Err        error
	Events     []event.GameEvent
	Steps      []step.AtomicStep
	ChainBlock *chain.Block
}

// Run validates and executes cmd, passing the outcome through the victory check.
func Run(env *Env, cmd Command, s state.Snapshot) Result {
	if v := cmd.CanExecute(s); !v.Valid {
		return Result{State: s, Err: v.Err(), Message: string(v.Code)}
	}
	res := cmd.Execute(s)
	if res.Success {
		res.State = CheckVictory(env, res.State)
	}
	return res
}

func failed(s state.Snapshot, err error) Result {
	return Result{State: s, Err: err, Message: err.Error()}
}

// --- Shared checks ---

func notOver(s state.Snapshot) validation.Result {
	if s.IsOver() {
		return validation.Failure(validation.CodeGameOver)
	}
	return validation.Success()
}

func mainPhase(s state.Snapshot) validation.Result {
	if s.Phase != state.PhaseMain1 {
		return validation.Failure(validation.CodeNotMainPhase, "phase", s.Phase)
	}
	return validation.Success()
}

func chainClosed(s state.Snapshot) validation.Result {
	if s.ChainOpen() {
		return validation.Failure(validation.CodeChainOpen, "links", len(s.Chain))
	}
	return validation.Success()
}

func inHand(s state.Snapshot, instanceID string) (state.CardInstance, validation.Result) {
	c, ok := s.Find(instanceID)
	if !ok {
		return c, validation.Failure(validation.CodeCardNotFound, "instance", instanceID)
	}
	if c.Location != state.ZoneHand {
		return c, validation.Failure(validation.CodeCardNotInHand, "instance", instanceID, "zone", c.Location)
	}
	return c, validation.Success()
}

func lookup(env *Env, cardID int) (card.Data, bool) {
	if env == nil || env.Cards == nil {
		return card.Data{}, false
	}
	return env.Cards.Lookup(cardID)
}
