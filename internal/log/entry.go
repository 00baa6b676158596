package log

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

// Kind marks where a journal entry came from.
type Kind string

const (
	KindEvent Kind = "event"
	KindStep  Kind = "step"
	KindError Kind = "error"
	KindWin   Kind = "win"
)

// Entry is a single line of the duel journal.
type Entry struct {
	Seq     int        // monotonic sequence number
	Turn    int        // which turn (1-based)
	Phase   string     // current phase name (e.g. "Main Phase 1")
	Kind    Kind       // entry source
	Event   event.Type // set for KindEvent
	StepID  string     // set for KindStep and KindError
	Card    string     // card name (if applicable)
	Details string     // human-readable detail string
}

// NewEventEntry describes a game event. names resolves card ids; nil falls
// back to "#id".
func NewEventEntry(e event.GameEvent, names card.Provider) Entry {
	name := ""
	if e.CardID != 0 {
		name = card.Name(names, e.CardID)
	}
	return Entry{
		Turn:    e.Turn,
		Phase:   e.Phase.String(),
		Kind:    KindEvent,
		Event:   e.Type,
		Card:    name,
		Details: describe(e, name),
	}
}

func describe(e event.GameEvent, name string) string {
	switch e.Type {
	case event.CardDrawn:
		return fmt.Sprintf("draws %s", name)
	case event.SpellActivated, event.TrapActivated, event.EffectActivated:
		return fmt.Sprintf("activates %s", name)
	case event.MonsterSummoned:
		return fmt.Sprintf("normal summons %s", name)
	case event.MonsterSet:
		return "sets a monster"
	case event.CardSet:
		return "sets a card"
	case event.CardSentToGrave:
		return fmt.Sprintf("%s is sent to the graveyard", name)
	case event.CardDestroyed:
		return fmt.Sprintf("%s is destroyed", name)
	case event.CardDiscarded:
		return fmt.Sprintf("discards %s", name)
	case event.CounterAdded:
		return fmt.Sprintf("%d counter(s) placed on %s", e.Amount, name)
	case event.CounterRemoved:
		return fmt.Sprintf("%d counter(s) removed from %s", e.Amount, name)
	case event.DamageDealt:
		return fmt.Sprintf("%s takes %d damage", e.Player, e.Amount)
	case event.LifeGained:
		return fmt.Sprintf("%s gains %d LP", e.Player, e.Amount)
	case event.LifePaid:
		return fmt.Sprintf("%s pays %d LP", e.Player, e.Amount)
	case event.PhaseChanged:
		return fmt.Sprintf("Phase → %s", e.Phase)
	case event.ChainLinked:
		return fmt.Sprintf("Chain Link %d: %s", e.Amount, name)
	case event.ChainResolved:
		return "chain resolved"
	}
	return string(e.Type)
}

// NewStepEntry describes an applied or failed step.
func NewStepEntry(n step.Notice) Entry {
	en := Entry{
		Turn:    n.Turn,
		Phase:   n.Phase.String(),
		Kind:    KindStep,
		StepID:  n.StepID,
		Details: n.Summary,
	}
	if n.Message != "" {
		en.Details = fmt.Sprintf("%s (%s)", n.Summary, n.Message)
	}
	if n.Err != nil {
		en.Kind = KindError
		en.Details = fmt.Sprintf("%s failed: %v", n.Summary, n.Err)
	}
	return en
}

func NewWinEntry(s state.Snapshot) Entry {
	return Entry{
		Turn:    s.Turn,
		Phase:   s.Phase.String(),
		Kind:    KindWin,
		Details: fmt.Sprintf("%s wins! (%s)", s.Result.Winner, s.Result.Reason),
	}
}
