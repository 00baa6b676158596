package cardscript

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/effect"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

// opFunc builds the step for one op, bound to the card that runs it.
type opFunc func(src state.CardInstance, id string) step.AtomicStep

type program []opFunc

func (p program) build(src state.CardInstance, prefix string) []step.AtomicStep {
	steps := make([]step.AtomicStep, len(p))
	for i, op := range p {
		steps[i] = op(src, fmt.Sprintf("%s/%d", prefix, i))
	}
	return steps
}

func (p program) steps(_ state.Snapshot, src state.CardInstance) []step.AtomicStep {
	return p.build(src, src.InstanceID+"/op")
}

func (p program) triggered(_ state.Snapshot, src state.CardInstance, e event.GameEvent) []step.AtomicStep {
	return p.build(src, fmt.Sprintf("%s/on-%s-%s", src.InstanceID, e.Type, e.InstanceID))
}

func fieldTargets(src state.CardInstance) func(state.Snapshot) []string {
	return effect.FieldSpellTraps(src.InstanceID)
}

func compileOps(ops []Op, section string, perm rule.Permitter) (program, error) {
	p := make(program, 0, len(ops))
	for i, op := range ops {
		fn, err := compileOp(op, perm)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		p = append(p, fn)
	}
	return p, nil
}

func compileOp(op Op, perm rule.Permitter) (opFunc, error) {
	switch op.Op {
	case "draw":
		n, err := positive("count", op.Count)
		if err != nil {
			return nil, err
		}
		return func(_ state.CardInstance, id string) step.AtomicStep {
			return effect.Draw(id, n)
		}, nil

	case "damage", "gain_life":
		amount, err := positive("amount", op.Amount)
		if err != nil {
			return nil, err
		}
		target, err := player(op.Target, state.PlayerOpponent)
		if err != nil {
			return nil, err
		}
		if op.Op == "gain_life" {
			return func(_ state.CardInstance, id string) step.AtomicStep {
				return effect.GainLife(id, target, amount)
			}, nil
		}
		return func(src state.CardInstance, id string) step.AtomicStep {
			return effect.Damage(id, perm, target, amount, src.InstanceID)
		}, nil

	case "pay_life":
		amount, err := positive("amount", op.Amount)
		if err != nil {
			return nil, err
		}
		return func(_ state.CardInstance, id string) step.AtomicStep {
			return effect.PayLife(id, state.PlayerSelf, amount)
		}, nil

	case "add_counter", "remove_counter":
		if op.Type == "" {
			return nil, fmt.Errorf("%s needs a counter type", op.Op)
		}
		n, err := positive("count", op.Count)
		if err != nil {
			return nil, err
		}
		if op.Op == "remove_counter" {
			return func(src state.CardInstance, id string) step.AtomicStep {
				return effect.RemoveCounter(id, src.InstanceID, op.Type, n)
			}, nil
		}
		return func(src state.CardInstance, id string) step.AtomicStep {
			return effect.AddCounter(id, src.InstanceID, op.Type, n, op.Max)
		}, nil

	case "discard":
		n, err := positive("count", op.Count)
		if err != nil {
			return nil, err
		}
		return func(_ state.CardInstance, id string) step.AtomicStep {
			return effect.Discard(id, n, n, false)
		}, nil

	case "target_spell_trap":
		n := max(op.Count, 1)
		return func(src state.CardInstance, id string) step.AtomicStep {
			return effect.SelectTargets(id, src.InstanceID, "Choose a Spell/Trap", fieldTargets(src), n, n)
		}, nil

	case "destroy_targets":
		return func(src state.CardInstance, id string) step.AtomicStep {
			return effect.DestroyTargets(id, src.InstanceID)
		}, nil
	}
	return nil, fmt.Errorf("unknown op %q", op.Op)
}

func positive(field string, v int) (int, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", field, v)
	}
	return v, nil
}

func player(s string, def state.Player) (state.Player, error) {
	switch s {
	case "":
		return def, nil
	case "self":
		return state.PlayerSelf, nil
	case "opponent":
		return state.PlayerOpponent, nil
	}
	return 0, fmt.Errorf("unknown target %q", s)
}
