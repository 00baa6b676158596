package chain

import (
	"fmt"
	"slices"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// --- Common ---

func commonConditions(a Action, s state.Snapshot, src state.CardInstance) validation.Result {
	if s.IsOver() {
		return validation.Failure(validation.CodeGameOver)
	}
	if !slices.Contains(a.Zones(), src.Location) {
		return locationFailure(a, src)
	}
	if s.OnChain(src.InstanceID) {
		return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "already_chained")
	}
	if a.OncePerTurn && src.HasActivated(a.EffectID) {
		return validation.Failure(validation.CodeEffectAlreadyActivated, "effect", a.EffectID)
	}
	if required := s.RequiredSpellSpeed(); a.Speed() < required {
		return validation.Failure(validation.CodeSpellSpeedTooLow, "speed", a.Speed(), "required", required)
	}
	return validation.Success()
}

func locationFailure(a Action, src state.CardInstance) validation.Result {
	switch {
	case a.Subtype.IsTrap():
		return validation.Failure(validation.CodeCardNotOnField, "zone", src.Location)
	case a.Subtype.IsSpell():
		return validation.Failure(validation.CodeCardNotInHand, "zone", src.Location)
	case slices.Contains(a.Zones(), state.ZoneMonster):
		return validation.Failure(validation.CodeCardNotOnField, "zone", src.Location)
	default:
		return validation.Failure(validation.CodeActivationConditionsNotMet, "zone", src.Location)
	}
}

// announceStep records the activation and emits the activation event.
func announceStep(a Action, src state.CardInstance) step.AtomicStep {
	kind := event.EffectActivated
	switch {
	case a.Subtype.IsSpell():
		kind = event.SpellActivated
	case a.Subtype.IsTrap():
		kind = event.TrapActivated
	}
	name := a.Name
	if name == "" {
		name = src.InstanceID
	}
	return step.AtomicStep{
		ID:      stepID(src, a, "activate"),
		Summary: fmt.Sprintf("Activate %s", name),
		Level:   step.Info,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			next, err := s.UpdateCard(src.InstanceID, func(c state.CardInstance) state.CardInstance {
				return c.WithActivated(a.EffectID)
			})
			if err != nil {
				return s, nil, err
			}
			next = next.MarkActivated(src.CardID)
			card, _ := next.Find(src.InstanceID)
			return next, []event.GameEvent{event.ForCard(kind, next, card)}, nil
		}),
	}
}

// --- Subtype ---

func subtypeConditions(a Action, s state.Snapshot, src state.CardInstance) validation.Result {
	switch a.Subtype {
	case NormalSpell, ContinuousSpell:
		if s.Phase != state.PhaseMain1 {
			return validation.Failure(validation.CodeNotMainPhase)
		}
		return spellPlacement(s, src)
	case QuickPlaySpell:
		if src.Location == state.ZoneSpellTrap && src.Face == state.FaceDown && src.PlacedThisTurn {
			return validation.Failure(validation.CodeQuickPlayRestriction)
		}
		return spellPlacement(s, src)
	case FieldSpell:
		if s.Phase != state.PhaseMain1 {
			return validation.Failure(validation.CodeNotMainPhase)
		}
		if src.Location == state.ZoneField && src.Face == state.FaceUp {
			return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "already_active")
		}
		return validation.Success()
	case NormalTrap, ContinuousTrap:
		if src.Face == state.FaceUp {
			return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "already_active")
		}
		if src.PlacedThisTurn {
			return validation.Failure(validation.CodeSetThisTurn)
		}
		return validation.Success()
	case Ignition:
		if s.Phase != state.PhaseMain1 {
			return validation.Failure(validation.CodeNotMainPhase)
		}
		return effectSource(src)
	case QuickEffect:
		return effectSource(src)
	}
	return validation.Success()
}

func spellPlacement(s state.Snapshot, src state.CardInstance) validation.Result {
	switch {
	case src.Location == state.ZoneHand && !s.HasRoom(state.ZoneSpellTrap):
		return validation.Failure(validation.CodeSpellTrapZoneFull)
	case src.Location == state.ZoneSpellTrap && src.Face == state.FaceUp:
		return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "already_active")
	}
	return validation.Success()
}

func effectSource(src state.CardInstance) validation.Result {
	if src.Location.OnField() && src.Face != state.FaceUp {
		return validation.Failure(validation.CodeCardNotFaceUp)
	}
	return validation.Success()
}

// subtypeActivation places or flips the card for card activations.
func subtypeActivation(a Action, s state.Snapshot, src state.CardInstance) []step.AtomicStep {
	if !a.Subtype.IsCardActivation() {
		return nil
	}
	if src.Location != state.ZoneHand {
		return []step.AtomicStep{{
			ID:      stepID(src, a, "flip"),
			Summary: "Flip face-up",
			Level:   step.Silent,
			Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
				next, err := s.UpdateCard(src.InstanceID, func(c state.CardInstance) state.CardInstance {
					c.Face = state.FaceUp
					return c
				})
				return next, nil, err
			}),
		}}
	}

	to := state.ZoneSpellTrap
	if a.Subtype == FieldSpell {
		to = state.ZoneField
	}
	return []step.AtomicStep{{
		ID:      stepID(src, a, "place"),
		Summary: fmt.Sprintf("Place on the %s", to),
		Level:   step.Silent,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			var events []event.GameEvent
			if to == state.ZoneField {
				// A new field spell replaces the old one.
				for _, old := range s.Zones.Field {
					var err error
					if s, err = s.MoveCard(old.InstanceID, state.ZoneGraveyard); err != nil {
						return s, nil, err
					}
					events = append(events, event.ForCard(event.CardSentToGrave, s, old))
				}
			}
			next, err := s.MoveCard(src.InstanceID, to, state.WithFace(state.FaceUp))
			return next, events, err
		}),
	}}
}

// subtypeCleanup sends one-shot cards to the graveyard after they resolve.
func subtypeCleanup(a Action, src state.CardInstance) []step.AtomicStep {
	switch a.Subtype {
	case NormalSpell, QuickPlaySpell, NormalTrap:
	default:
		return nil
	}
	return []step.AtomicStep{{
		ID:      stepID(src, a, "cleanup"),
		Summary: "Send to graveyard",
		Level:   step.Silent,
		Action: step.Transform(func(s state.Snapshot) (state.Snapshot, []event.GameEvent, error) {
			card, ok := s.Find(src.InstanceID)
			if !ok || !card.Location.OnField() {
				// Already gone, e.g. destroyed in response.
				return s, nil, nil
			}
			next, err := s.MoveCard(src.InstanceID, state.ZoneGraveyard)
			if err != nil {
				return s, nil, err
			}
			return next, []event.GameEvent{event.ForCard(event.CardSentToGrave, next, card)}, nil
		}),
	}}
}

func stepID(src state.CardInstance, a Action, what string) string {
	return fmt.Sprintf("%s/%s/%s", src.InstanceID, a.EffectID, what)
}
