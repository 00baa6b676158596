package state

import (
	"fmt"
	"slices"
)

// Counter is a typed marker stack on a card.
type Counter struct {
	Type  string
	Count int
}

// CardInstance is one physical copy of a card in a duel. Values are never
// modified after they are placed in a Snapshot; every With* method returns a
// copy.
type CardInstance struct {
	CardID     int
	InstanceID string
	Location   Zone
	Face       Face
	Position   BattlePosition
	Counters   []Counter

	PlacedThisTurn   bool
	ActivatedEffects []string // effect ids used this turn
	TargetIDs        []string // targets locked at activation
}

func (c CardInstance) String() string {
	return fmt.Sprintf("%s(#%d)", c.InstanceID, c.CardID)
}

func (c CardInstance) FaceUp() bool {
	return c.Face == FaceUp
}

// FaceUpOnField reports whether the card can apply continuous or trigger rules.
func (c CardInstance) FaceUpOnField() bool {
	return c.Location.OnField() && c.Face == FaceUp
}

func (c CardInstance) CounterCount(counterType string) int {
	for _, ctr := range c.Counters {
		if ctr.Type == counterType {
			return ctr.Count
		}
	}
	return 0
}

func (c CardInstance) HasActivated(effectID string) bool {
	return slices.Contains(c.ActivatedEffects, effectID)
}

// WithCounter sets the count for counterType, clamped to [0, limit]. A limit
// of zero or less means unbounded. Zero-count entries are dropped.
func (c CardInstance) WithCounter(counterType string, count, limit int) CardInstance {
	if count < 0 {
		count = 0
	}
	if limit > 0 && count > limit {
		count = limit
	}
	out := make([]Counter, 0, len(c.Counters)+1)
	found := false
	for _, ctr := range c.Counters {
		if ctr.Type == counterType {
			found = true
			if count > 0 {
				out = append(out, Counter{Type: counterType, Count: count})
			}
			continue
		}
		out = append(out, ctr)
	}
	if !found && count > 0 {
		out = append(out, Counter{Type: counterType, Count: count})
	}
	if len(out) == 0 {
		out = nil
	}
	c.Counters = out
	return c
}

func (c CardInstance) WithActivated(effectID string) CardInstance {
	if c.HasActivated(effectID) {
		return c
	}
	c.ActivatedEffects = append(slices.Clone(c.ActivatedEffects), effectID)
	return c
}

func (c CardInstance) WithTargets(ids []string) CardInstance {
	c.TargetIDs = slices.Clone(ids)
	return c
}

// resetForTurn clears flags that only last for one turn.
func (c CardInstance) resetForTurn() CardInstance {
	c.PlacedThisTurn = false
	c.ActivatedEffects = nil
	return c
}

// leaveField drops state that does not survive leaving the field.
func (c CardInstance) leaveField() CardInstance {
	c.Counters = nil
	c.TargetIDs = nil
	c.Position = PositionNone
	c.PlacedThisTurn = false
	return c
}
