package library

import (
	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/effect"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// deckAtLeast fails with INSUFFICIENT_DECK when fewer than n cards remain.
func deckAtLeast(n int) func(state.Snapshot, state.CardInstance) validation.Result {
	return func(s state.Snapshot, _ state.CardInstance) validation.Result {
		if have := len(s.Zones.Deck); have < n {
			return validation.Failure(validation.CodeInsufficientDeck, "required", n, "available", have)
		}
		return validation.Success()
	}
}

func stepID(src state.CardInstance, what string) string {
	return src.InstanceID + "/" + what
}

// PotOfGreed: Normal Spell. Draw 2 cards.
func PotOfGreed() Definition {
	return Definition{
		Data: card.Data{ID: PotOfGreedID, Name: "Pot of Greed", Kind: card.KindSpell, Subtype: "normal", Text: "Draw 2 cards."},
		Actions: []chain.Action{{
			CardID:   PotOfGreedID,
			EffectID: "activate",
			Name:     "Pot of Greed",
			Category: chain.CategoryDraw,
			Subtype:  chain.NormalSpell,
			Hooks: chain.Hooks{
				Conditions: deckAtLeast(2),
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.Draw(stepID(src, "draw"), 2)}
				},
			},
		}},
	}
}

// UpstartGoblin: Normal Spell. Draw 1 card, then your opponent gains 1000 LP.
func UpstartGoblin() Definition {
	return Definition{
		Data: card.Data{ID: UpstartGoblinID, Name: "Upstart Goblin", Kind: card.KindSpell, Subtype: "normal",
			Text: "Draw 1 card, then your opponent gains 1000 Life Points."},
		Actions: []chain.Action{{
			CardID:   UpstartGoblinID,
			EffectID: "activate",
			Name:     "Upstart Goblin",
			Category: chain.CategoryDraw,
			Subtype:  chain.NormalSpell,
			Hooks: chain.Hooks{
				Conditions: deckAtLeast(1),
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{
						effect.Draw(stepID(src, "draw"), 1),
						effect.GainLife(stepID(src, "gain"), state.PlayerOpponent, 1000),
					}
				},
			},
		}},
	}
}

// GracefulCharity: Normal Spell. Draw 3 cards, then discard 2.
func GracefulCharity() Definition {
	return Definition{
		Data: card.Data{ID: GracefulCharityID, Name: "Graceful Charity", Kind: card.KindSpell, Subtype: "normal",
			Text: "Draw 3 cards, then discard 2 cards."},
		Actions: []chain.Action{{
			CardID:   GracefulCharityID,
			EffectID: "activate",
			Name:     "Graceful Charity",
			Category: chain.CategoryDraw,
			Subtype:  chain.NormalSpell,
			Hooks: chain.Hooks{
				Conditions: deckAtLeast(3),
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{
						effect.Draw(stepID(src, "draw"), 3),
						effect.Discard(stepID(src, "discard"), 2, 2, false),
					}
				},
			},
		}},
	}
}

// Ookazi: Normal Spell. Inflict 800 damage to your opponent.
func Ookazi(perm rule.Permitter) Definition {
	return Definition{
		Data: card.Data{ID: OokaziID, Name: "Ookazi", Kind: card.KindSpell, Subtype: "normal",
			Text: "Inflict 800 damage to your opponent."},
		Actions: []chain.Action{{
			CardID:   OokaziID,
			EffectID: "activate",
			Name:     "Ookazi",
			Category: chain.CategoryDamage,
			Subtype:  chain.NormalSpell,
			Hooks: chain.Hooks{
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.Damage(stepID(src, "damage"), perm, state.PlayerOpponent, 800, src.InstanceID)}
				},
			},
		}},
	}
}

// MysticalSpaceTyphoon: Quick-Play Spell. Target 1 Spell/Trap on the field;
// destroy that target.
func MysticalSpaceTyphoon() Definition {
	return Definition{
		Data: card.Data{ID: MysticalSpaceTyphoonID, Name: "Mystical Space Typhoon", Kind: card.KindSpell, Subtype: "quick-play",
			Text: "Target 1 Spell/Trap on the field; destroy that target."},
		Actions: []chain.Action{{
			CardID:   MysticalSpaceTyphoonID,
			EffectID: "activate",
			Name:     "Mystical Space Typhoon",
			Category: chain.CategoryDestroy,
			Subtype:  chain.QuickPlaySpell,
			Hooks: chain.Hooks{
				Conditions: func(s state.Snapshot, src state.CardInstance) validation.Result {
					if len(effect.FieldSpellTraps(src.InstanceID)(s)) == 0 {
						return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "no_target")
					}
					return validation.Success()
				},
				Activation: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.SelectTargets(stepID(src, "target"), src.InstanceID,
						"Choose a Spell/Trap to destroy", effect.FieldSpellTraps(src.InstanceID), 1, 1)}
				},
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.DestroyTargets(stepID(src, "destroy"), src.InstanceID)}
				},
			},
		}},
	}
}

// JarOfGreed: Normal Trap. Draw 1 card.
func JarOfGreed() Definition {
	return Definition{
		Data: card.Data{ID: JarOfGreedID, Name: "Jar of Greed", Kind: card.KindTrap, Subtype: "normal", Text: "Draw 1 card."},
		Actions: []chain.Action{{
			CardID:   JarOfGreedID,
			EffectID: "activate",
			Name:     "Jar of Greed",
			Category: chain.CategoryDraw,
			Subtype:  chain.NormalTrap,
			Hooks: chain.Hooks{
				Conditions: deckAtLeast(1),
				Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
					return []step.AtomicStep{effect.Draw(stepID(src, "draw"), 1)}
				},
			},
		}},
	}
}

// ChickenGame: Field Spell. Neither player takes damage while their Life
// Points are lower than their opponent's. Once per turn: pay 1000 Life Points
// to draw 1 card.
func ChickenGame() Definition {
	return Definition{
		Data: card.Data{ID: ChickenGameID, Name: "Chicken Game", Kind: card.KindSpell, Subtype: "field",
			Text: "The player with lower Life Points takes no damage. Once per turn: pay 1000 Life Points; draw 1 card."},
		Actions: []chain.Action{
			{
				CardID:   ChickenGameID,
				EffectID: "activate",
				Name:     "Chicken Game",
				Category: chain.CategoryOther,
				Subtype:  chain.FieldSpell,
			},
			{
				CardID:      ChickenGameID,
				EffectID:    "draw",
				Name:        "Chicken Game: draw",
				Category:    chain.CategoryDraw,
				Subtype:     chain.Ignition,
				OncePerTurn: true,
				Hooks: chain.Hooks{
					Conditions: func(s state.Snapshot, src state.CardInstance) validation.Result {
						if s.LP(state.PlayerSelf) < 1000 {
							return validation.Failure(validation.CodeInsufficientLifePoints, "required", 1000)
						}
						return deckAtLeast(1)(s, src)
					},
					Activation: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
						return []step.AtomicStep{effect.PayLife(stepID(src, "pay"), state.PlayerSelf, 1000)}
					},
					Resolution: func(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
						return []step.AtomicStep{effect.Draw(stepID(src, "draw"), 1)}
					},
				},
			},
		},
		Rules: []rule.AdditionalRule{rule.Permission(rule.ActionPermission{
			ID:     "no-damage-to-lower",
			CardID: ChickenGameID,
			Kind:   rule.PermitDamage,
			Check: func(s state.Snapshot, _ state.CardInstance, ctx rule.PermissionContext) bool {
				return s.LP(ctx.Target) >= s.LP(ctx.Target.Opponent())
			},
		})},
	}
}
