package event

import (
	"slices"

	"github.com/peterkuimelis/chainduel/internal/state"
)

// Type names a kind of occurrence that rules can react to.
type Type string

const (
	CardDrawn       Type = "card_drawn"
	SpellActivated  Type = "spell_activated"
	TrapActivated   Type = "trap_activated"
	EffectActivated Type = "effect_activated"
	MonsterSummoned Type = "monster_summoned"
	MonsterSet      Type = "monster_set"
	CardSet         Type = "card_set"
	CardSentToGrave Type = "card_sent_to_graveyard"
	CardDestroyed   Type = "card_destroyed"
	CardDiscarded   Type = "card_discarded"
	CounterAdded    Type = "counter_added"
	CounterRemoved  Type = "counter_removed"
	DamageDealt     Type = "damage_dealt"
	LifeGained      Type = "life_gained"
	LifePaid        Type = "life_paid"
	PhaseChanged    Type = "phase_changed"
	ChainLinked     Type = "chain_linked"
	ChainResolved   Type = "chain_resolved"
)

// GameEvent is a single occurrence. Amount and Player are meaningful only
// for events that carry them.
type GameEvent struct {
	Type       Type
	InstanceID string
	CardID     int
	Player     state.Player
	Amount     int
	Phase      state.Phase
	Turn       int
}

// New returns an event stamped with the snapshot's turn and phase.
func New(t Type, s state.Snapshot) GameEvent {
	return GameEvent{Type: t, Turn: s.Turn, Phase: s.Phase}
}

// ForCard returns an event about card, stamped with the snapshot's turn and phase.
func ForCard(t Type, s state.Snapshot, card state.CardInstance) GameEvent {
	e := New(t, s)
	e.InstanceID = card.InstanceID
	e.CardID = card.CardID
	return e
}

// TimeSnapshot groups events that happened simultaneously.
type TimeSnapshot struct {
	Seq    int
	Turn   int
	Phase  state.Phase
	Events []GameEvent
}

// Has reports whether the group contains an event of type t.
func (ts TimeSnapshot) Has(t Type) bool {
	return slices.ContainsFunc(ts.Events, func(e GameEvent) bool { return e.Type == t })
}

// Timeline is the append-only history of TimeSnapshots. Recording appends in
// place; hand out a View to readers.
type Timeline struct {
	history []TimeSnapshot
}

// Record appends one simultaneous group. Empty groups are ignored.
func (tl *Timeline) Record(turn int, phase state.Phase, events ...GameEvent) TimeSnapshot {
	if len(events) == 0 {
		return TimeSnapshot{}
	}
	ts := TimeSnapshot{
		Seq:    len(tl.history) + 1,
		Turn:   turn,
		Phase:  phase,
		Events: slices.Clone(events),
	}
	tl.history = append(tl.history, ts)
	return ts
}

// View returns the history so far. Later records into tl do not show up in
// the view, and records into the view do not touch tl.
func (tl *Timeline) View() Timeline {
	return Timeline{history: slices.Clip(tl.history)}
}

// History returns every recorded group, oldest first.
func (tl Timeline) History() []TimeSnapshot {
	return slices.Clone(tl.history)
}

func (tl Timeline) Len() int {
	return len(tl.history)
}

// Latest returns the most recent group.
func (tl Timeline) Latest() (TimeSnapshot, bool) {
	if len(tl.history) == 0 {
		return TimeSnapshot{}, false
	}
	return tl.history[len(tl.history)-1], true
}

// Since returns groups with Seq greater than seq.
func (tl Timeline) Since(seq int) []TimeSnapshot {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(tl.history) {
		return nil
	}
	return slices.Clone(tl.history[seq:])
}

// LastWas reports whether the most recent group contains an event of type t.
// "When" effects use this to tell whether they missed timing.
func (tl Timeline) LastWas(t Type) bool {
	latest, ok := tl.Latest()
	return ok && latest.Has(t)
}
