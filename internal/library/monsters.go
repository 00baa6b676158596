package library

import (
	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/effect"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// libraryMaxCounters caps Royal Magical Library's spell counters.
const libraryMaxCounters = 3

// RoyalMagicalLibrary: Effect Monster, level 4. Each time a Spell is
// activated, place 1 Spell Counter on this card (max 3). Remove 3 Spell
// Counters; draw 1 card.
func RoyalMagicalLibrary() Definition {
	return Definition{
		Data: card.Data{
			ID:      RoyalMagicalLibraryID,
			Name:    "Royal Magical Library",
			Kind:    card.KindMonster,
			Subtype: "effect",
			Level:   4,
			ATK:     0,
			DEF:     2000,
			Text:    "Each time a Spell is activated, place 1 Spell Counter on this card (max. 3). Remove 3 Spell Counters from this card; draw 1 card.",
		},
		Actions: []chain.Action{{
			CardID:   RoyalMagicalLibraryID,
			EffectID: "draw",
			Name:     "Royal Magical Library: draw",
			Category: chain.CategoryDraw,
			Subtype:  chain.Ignition,
			Hooks: chain.Hooks{
				Conditions: func(s state.Snapshot, src state.CardInstance) validation.Result {
					if have := src.CounterCount(SpellCounter); have < libraryMaxCounters {
						return validation.Failure(validation.CodeInsufficientCounters, "required", libraryMaxCounters, "available", have)
					}
					return deckAtLeast(1)(s, src)
				},
				Activation: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.RemoveCounter(stepID(src, "remove-counters"), src.InstanceID, SpellCounter, libraryMaxCounters)}
				},
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.Draw(stepID(src, "draw"), 1)}
				},
			},
		}},
		Rules: []rule.AdditionalRule{rule.Trigger(rule.TriggerRule{
			ID:     "spell-counter",
			CardID: RoyalMagicalLibraryID,
			Event:  event.SpellActivated,
			Timing: rule.TimingIf,
			Steps: func(_ state.Snapshot, src state.CardInstance, e event.GameEvent) []step.AtomicStep {
				return []step.AtomicStep{effect.AddCounter(stepID(src, "counter-"+e.InstanceID), src.InstanceID, SpellCounter, 1, libraryMaxCounters)}
			},
		})},
	}
}
