package command

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// SetSpellTrap places a spell or trap from the hand face-down. Field spells
// go to the field zone, replacing whatever is there.
type SetSpellTrap struct {
	env        *Env
	InstanceID string
}

func NewSetSpellTrap(env *Env, instanceID string) *SetSpellTrap {
	return &SetSpellTrap{env: env, InstanceID: instanceID}
}

func (c *SetSpellTrap) Name() string { return "set_spell_trap" }

func (c *SetSpellTrap) CanExecute(s state.Snapshot) validation.Result {
	r := validation.First(notOver(s), mainPhase(s), chainClosed(s))
	if !r.Valid {
		return r
	}
	inst, r := inHand(s, c.InstanceID)
	if !r.Valid {
		return r
	}
	data, ok := lookup(c.env, inst.CardID)
	if !ok || !data.IsSpellOrTrap() {
		return validation.Failure(validation.CodeNotSpellTrapCard, "card", inst.CardID)
	}
	if !c.isFieldSpell(inst.CardID) && !s.HasRoom(state.ZoneSpellTrap) {
		return validation.Failure(validation.CodeSpellTrapZoneFull)
	}
	return validation.Success()
}

func (c *SetSpellTrap) Execute(s state.Snapshot) Result {
	inst, ok := s.Find(c.InstanceID)
	if !ok {
		return failed(s, fmt.Errorf("set %s: %w", c.InstanceID, state.ErrCardNotFound))
	}

	var events []event.GameEvent
	to := state.ZoneSpellTrap
	if c.isFieldSpell(inst.CardID) {
		to = state.ZoneField
		for _, old := range s.Zones.Field {
			next, err := s.MoveCard(old.InstanceID, state.ZoneGraveyard)
			if err != nil {
				return failed(s, err)
			}
			s = next
			events = append(events, event.ForCard(event.CardSentToGrave, s, old))
		}
	}

	next, err := s.MoveCard(c.InstanceID, to, state.WithFace(state.FaceDown), state.Placed())
	if err != nil {
		return failed(s, err)
	}
	placed, _ := next.Find(c.InstanceID)
	return Result{
		Success: true,
		State:   next,
		Message: fmt.Sprintf("set %s", c.InstanceID),
		Events:  append(events, event.ForCard(event.CardSet, next, placed)),
	}
}

func (c *SetSpellTrap) isFieldSpell(cardID int) bool {
	if c.env != nil && c.env.Actions != nil {
		if a, ok := c.env.Actions.Activation(cardID); ok {
			return a.Subtype == chain.FieldSpell
		}
	}
	data, ok := lookup(c.env, cardID)
	return ok && data.Subtype == "field"
}

// ActivateSpell activates a spell or trap card from the hand or the field.
// The card's activation steps run at once; its resolution waits on the chain.
type ActivateSpell struct {
	env        *Env
	InstanceID string
}

func NewActivateSpell(env *Env, instanceID string) *ActivateSpell {
	return &ActivateSpell{env: env, InstanceID: instanceID}
}

func (c *ActivateSpell) Name() string { return "activate_spell" }

func (c *ActivateSpell) CanExecute(s state.Snapshot) validation.Result {
	_, _, r := c.resolve(s)
	return r
}

func (c *ActivateSpell) resolve(s state.Snapshot) (state.CardInstance, chain.Action, validation.Result) {
	if r := notOver(s); !r.Valid {
		return state.CardInstance{}, chain.Action{}, r
	}
	inst, ok := s.Find(c.InstanceID)
	if !ok {
		return inst, chain.Action{}, validation.Failure(validation.CodeCardNotFound, "instance", c.InstanceID)
	}
	a, ok := c.env.Actions.Activation(inst.CardID)
	if !ok {
		if data, known := lookup(c.env, inst.CardID); known && !data.IsSpellOrTrap() {
			return inst, a, validation.Failure(validation.CodeNotSpellTrapCard, "card", inst.CardID)
		}
		return inst, a, validation.Failure(validation.CodeNoActivationEffect, "card", inst.CardID)
	}
	return inst, a, a.CanActivate(s, inst)
}

func (c *ActivateSpell) Execute(s state.Snapshot) Result {
	inst, a, r := c.resolve(s)
	if !r.Valid {
		return failed(s, r.Err())
	}
	return activate(s, a, inst)
}

// ActivateIgnition uses an ignition or quick effect of a card. An empty
// EffectID picks the card's first effect.
type ActivateIgnition struct {
	env        *Env
	InstanceID string
	EffectID   string
}

func NewActivateIgnition(env *Env, instanceID, effectID string) *ActivateIgnition {
	return &ActivateIgnition{env: env, InstanceID: instanceID, EffectID: effectID}
}

func (c *ActivateIgnition) Name() string { return "activate_ignition" }

func (c *ActivateIgnition) CanExecute(s state.Snapshot) validation.Result {
	_, _, r := c.resolve(s)
	return r
}

func (c *ActivateIgnition) resolve(s state.Snapshot) (state.CardInstance, chain.Action, validation.Result) {
	if r := notOver(s); !r.Valid {
		return state.CardInstance{}, chain.Action{}, r
	}
	inst, ok := s.Find(c.InstanceID)
	if !ok {
		return inst, chain.Action{}, validation.Failure(validation.CodeCardNotFound, "instance", c.InstanceID)
	}
	a, ok := c.env.Actions.Ignition(inst.CardID, c.EffectID)
	if !ok {
		return inst, a, validation.Failure(validation.CodeNoIgnitionEffect, "card", inst.CardID, "effect", c.EffectID)
	}
	return inst, a, a.CanActivate(s, inst)
}

func (c *ActivateIgnition) Execute(s state.Snapshot) Result {
	inst, a, r := c.resolve(s)
	if !r.Valid {
		return failed(s, r.Err())
	}
	return activate(s, a, inst)
}

func activate(s state.Snapshot, a chain.Action, inst state.CardInstance) Result {
	block := chain.NewBlock(a, s, inst)
	return Result{
		Success:    true,
		State:      s,
		Message:    fmt.Sprintf("activate %s", block.Link.EffectID),
		Steps:      a.CreateActivationSteps(s, inst),
		ChainBlock: &block,
	}
}
