// Package effect builds the atomic steps card effects are made of.
package effect

import (
	"errors"
	"fmt"
	"slices"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

var ErrInsufficientLifePoints = errors.New("not enough life points")

// Draw moves count cards from the deck to the hand.
func Draw(id string, count int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Draw %d", count),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			next, drawn, err := s.Draw(count)
			if err != nil {
				return s, nil, err
			}
			return next, DrawEvents(next, drawn), nil
		}),
	}
}

// DrawEvents returns the card_drawn events for cards already drawn into s.
func DrawEvents(s state.Snapshot, drawn []state.CardInstance) []event.GameEvent {
	events := make([]event.GameEvent, len(drawn))
	for i, c := range drawn {
		events[i] = event.ForCard(event.CardDrawn, s, c)
	}
	return events
}

// Damage inflicts amount to target unless a permission vetoes it, in which
// case the damage becomes zero.
func Damage(id string, rules rule.Permitter, target state.Player, amount int, sourceID string) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Inflict %d damage to %s", amount, target),
		Level:   step.Info,
		Action: func(s state.Snapshot, _ []string) step.Update {
			dealt := ResolveDamage(s, rules, target, amount, sourceID)
			next := s.WithLifePoints(target, s.LP(target)-dealt)
			e := event.New(event.DamageDealt, next)
			e.Player, e.Amount, e.InstanceID = target, dealt, sourceID
			return step.Ok(next, fmt.Sprintf("%s takes %d damage", target, dealt), e)
		},
	}
}

// ResolveDamage returns how much of amount target actually takes.
func ResolveDamage(s state.Snapshot, rules rule.Permitter, target state.Player, amount int, sourceID string) int {
	if amount <= 0 {
		return 0
	}
	if rules != nil && !rules.Permit(s, rule.PermissionContext{
		Kind:     rule.PermitDamage,
		Target:   target,
		Amount:   amount,
		SourceID: sourceID,
	}) {
		return 0
	}
	return amount
}

// GainLife raises target's life points.
func GainLife(id string, target state.Player, amount int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("%s gains %d life points", target, amount),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			next := s.WithLifePoints(target, s.LP(target)+amount)
			e := event.New(event.LifeGained, next)
			e.Player, e.Amount = target, amount
			return next, []event.GameEvent{e}, nil
		}),
	}
}

// PayLife is a cost: it fails instead of going below zero.
func PayLife(id string, payer state.Player, amount int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Pay %d life points", amount),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			if s.LP(payer) < amount {
				return s, nil, fmt.Errorf("pay %d of %d: %w", amount, s.LP(payer), ErrInsufficientLifePoints)
			}
			next := s.WithLifePoints(payer, s.LP(payer)-amount)
			e := event.New(event.LifePaid, next)
			e.Player, e.Amount = payer, amount
			return next, []event.GameEvent{e}, nil
		}),
	}
}

// AddCounter places n counters on a card, capped at limit (0 = no cap). The
// card must still be face-up on the field; otherwise the step does nothing.
func AddCounter(id, instanceID, counterType string, n, limit int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Place %d %s counter(s)", n, counterType),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			card, ok := s.Find(instanceID)
			if !ok || !card.FaceUpOnField() {
				return s, nil, nil
			}
			before := card.CounterCount(counterType)
			next, err := s.AddCounter(instanceID, counterType, n, limit)
			if err != nil {
				return s, nil, err
			}
			card, _ = next.Find(instanceID)
			added := card.CounterCount(counterType) - before
			if added == 0 {
				return next, nil, nil
			}
			e := event.ForCard(event.CounterAdded, next, card)
			e.Amount = added
			return next, []event.GameEvent{e}, nil
		}),
	}
}

// RemoveCounter is a cost: it fails when the card has fewer than n counters.
func RemoveCounter(id, instanceID, counterType string, n int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Remove %d %s counter(s)", n, counterType),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			card, ok := s.Find(instanceID)
			if !ok {
				return s, nil, fmt.Errorf("remove counters: %w", state.ErrCardNotFound)
			}
			if have := card.CounterCount(counterType); have < n {
				return s, nil, fmt.Errorf("remove %d %s counters, have %d", n, counterType, have)
			}
			next, err := s.RemoveCounter(instanceID, counterType, n)
			if err != nil {
				return s, nil, err
			}
			e := event.ForCard(event.CounterRemoved, next, card)
			e.Amount = n
			return next, []event.GameEvent{e}, nil
		}),
	}
}

// SendToGraveyard moves a card to the graveyard if it still exists outside it.
func SendToGraveyard(id, instanceID string) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: "Send to graveyard",
		Level:   step.Silent,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			return sendToGraveyard(s, instanceID, event.CardSentToGrave)
		}),
	}
}

func sendToGraveyard(s state.Snapshot, instanceID string, kind event.Type) (state.Snapshot, []event.GameEvent, error) {
	card, ok := s.Find(instanceID)
	if !ok || card.Location == state.ZoneGraveyard {
		return s, nil, nil
	}
	next, err := s.MoveCard(instanceID, state.ZoneGraveyard)
	if err != nil {
		return s, nil, err
	}
	return next, []event.GameEvent{event.ForCard(kind, next, card)}, nil
}

// Discard asks for between min and max cards from the hand and sends them to
// the graveyard.
func Discard(id string, min, max int, cancelable bool) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: fmt.Sprintf("Discard %d card(s)", min),
		Level:   step.Interactive,
		Selection: &step.Selection{
			Prompt:     fmt.Sprintf("Choose %d card(s) to discard", min),
			PoolFunc:   ZoneIDs(state.ZoneHand),
			Min:        min,
			Max:        max,
			Cancelable: cancelable,
		},
		Action: func(s state.Snapshot, selected []string) step.Update {
			var events []event.GameEvent
			for _, sid := range selected {
				card, ok := s.Find(sid)
				if !ok || card.Location != state.ZoneHand {
					return step.Fail(s, fmt.Errorf("discard %s: not in hand", sid))
				}
				next, evs, err := sendToGraveyard(s, sid, event.CardDiscarded)
				if err != nil {
					return step.Fail(s, err)
				}
				s, events = next, append(events, evs...)
			}
			return step.Ok(s, fmt.Sprintf("discarded %d", len(selected)), events...)
		},
	}
}

// SelectTargets asks for targets among pool and locks them on the source.
func SelectTargets(id, sourceID, prompt string, pool func(state.Snapshot) []string, min, max int) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: prompt,
		Level:   step.Interactive,
		Selection: &step.Selection{
			Prompt:     prompt,
			PoolFunc:   pool,
			Min:        min,
			Max:        max,
			Cancelable: true,
		},
		Action: func(s state.Snapshot, selected []string) step.Update {
			next, err := s.UpdateCard(sourceID, func(c state.CardInstance) state.CardInstance {
				return c.WithTargets(selected)
			})
			if err != nil {
				return step.Fail(s, err)
			}
			return step.Ok(next, fmt.Sprintf("targeted %v", selected))
		},
	}
}

// DestroyTargets destroys the source's locked targets that are still on the
// field. Targets that left the field are skipped.
func DestroyTargets(id, sourceID string) step.AtomicStep {
	return step.AtomicStep{
		ID:      id,
		Summary: "Destroy targets",
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			src, ok := s.Find(sourceID)
			if !ok {
				return s, nil, nil
			}
			var events []event.GameEvent
			for _, tid := range src.TargetIDs {
				target, ok := s.Find(tid)
				if !ok || !target.Location.OnField() {
					continue
				}
				next, evs, err := sendToGraveyard(s, tid, event.CardDestroyed)
				if err != nil {
					return s, nil, err
				}
				s, events = next, append(events, evs...)
			}
			return s, events, nil
		}),
	}
}

// FieldSpellTraps returns a pool function over face-up or face-down cards in
// the spell/trap and field zones, excluding the given instances.
func FieldSpellTraps(exclude ...string) func(state.Snapshot) []string {
	return func(s state.Snapshot) []string {
		var ids []string
		for _, z := range []state.Zone{state.ZoneSpellTrap, state.ZoneField} {
			for _, c := range s.Zones.Get(z) {
				if !slices.Contains(exclude, c.InstanceID) {
					ids = append(ids, c.InstanceID)
				}
			}
		}
		return ids
	}
}

// ZoneIDs is a pool function over every card in zone.
func ZoneIDs(zone state.Zone) func(state.Snapshot) []string {
	return func(s state.Snapshot) []string {
		cards := s.Zones.Get(zone)
		ids := make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.InstanceID
		}
		return ids
	}
}
