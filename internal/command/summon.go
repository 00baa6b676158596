package command

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/effect"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// NormalSummon places a monster from the hand face-up in attack position, or
// face-down in defense position when set is true. Level 5 and higher monsters
// tribute monsters chosen by the player.
type NormalSummon struct {
	env        *Env
	InstanceID string
	set        bool
}

func NewNormalSummon(env *Env, instanceID string) *NormalSummon {
	return &NormalSummon{env: env, InstanceID: instanceID}
}

func NewSetMonster(env *Env, instanceID string) *NormalSummon {
	return &NormalSummon{env: env, InstanceID: instanceID, set: true}
}

func (c *NormalSummon) Name() string {
	if c.set {
		return "set_monster"
	}
	return "normal_summon"
}

func (c *NormalSummon) CanExecute(s state.Snapshot) validation.Result {
	r := validation.First(notOver(s), mainPhase(s), chainClosed(s))
	if !r.Valid {
		return r
	}
	inst, r := inHand(s, c.InstanceID)
	if !r.Valid {
		return r
	}
	data, ok := lookup(c.env, inst.CardID)
	if !ok || !data.IsMonster() {
		return validation.Failure(validation.CodeNotMonsterCard, "card", inst.CardID)
	}
	if s.NormalSummonsUsed >= s.NormalSummonLimit {
		return validation.Failure(validation.CodeSummonLimitReached, "limit", s.NormalSummonLimit)
	}
	tributes := data.TributesRequired()
	if tributes == 0 && !s.HasRoom(state.ZoneMonster) {
		return validation.Failure(validation.CodeMonsterZoneFull)
	}
	if have := len(s.Zones.Monster); have < tributes {
		return validation.Failure(validation.CodeInsufficientTributes, "required", tributes, "available", have)
	}
	return validation.Success()
}

func (c *NormalSummon) Execute(s state.Snapshot) Result {
	inst, ok := s.Find(c.InstanceID)
	if !ok {
		return failed(s, fmt.Errorf("summon %s: %w", c.InstanceID, state.ErrCardNotFound))
	}
	data, _ := lookup(c.env, inst.CardID)
	tributes := data.TributesRequired()
	if tributes == 0 {
		next, events, err := c.place(s, nil)
		if err != nil {
			return failed(s, err)
		}
		return Result{Success: true, State: next, Events: events, Message: fmt.Sprintf("%s %s", c.Name(), data.Name)}
	}

	return Result{
		Success: true,
		State:   s,
		Message: fmt.Sprintf("%s %s needs %d tribute(s)", c.Name(), data.Name, tributes),
		Steps: []step.AtomicStep{{
			ID:      fmt.Sprintf("%s/tribute", c.InstanceID),
			Summary: fmt.Sprintf("Tribute %d monster(s) for %s", tributes, data.Name),
			Level:   step.Interactive,
			Selection: &step.Selection{
				Prompt:     fmt.Sprintf("Choose %d monster(s) to tribute", tributes),
				PoolFunc:   effect.ZoneIDs(state.ZoneMonster),
				Min:        tributes,
				Max:        tributes,
				Cancelable: true,
			},
			Action: func(s state.Snapshot, selected []string) step.Update {
				next, events, err := c.place(s, selected)
				if err != nil {
					return step.Fail(s, err)
				}
				return step.Ok(next, fmt.Sprintf("%s %s", c.Name(), data.Name), events...)
			},
		}},
	}
}

func (c *NormalSummon) place(s state.Snapshot, tributes []string) (state.Snapshot, []event.GameEvent, error) {
	var events []event.GameEvent
	for _, id := range tributes {
		t, ok := s.Find(id)
		if !ok || t.Location != state.ZoneMonster {
			return s, nil, fmt.Errorf("tribute %s: not in the monster zone", id)
		}
		next, err := s.MoveCard(id, state.ZoneGraveyard)
		if err != nil {
			return s, nil, err
		}
		s = next
		events = append(events, event.ForCard(event.CardSentToGrave, s, t))
	}

	face, pos, kind := state.FaceUp, state.PositionAttack, event.MonsterSummoned
	if c.set {
		face, pos, kind = state.FaceDown, state.PositionDefense, event.MonsterSet
	}
	next, err := s.MoveCard(c.InstanceID, state.ZoneMonster, state.WithFace(face), state.WithPosition(pos), state.Placed())
	if err != nil {
		return s, nil, err
	}
	next = next.UseNormalSummon()
	placed, _ := next.Find(c.InstanceID)
	return next, append(events, event.ForCard(kind, next, placed)), nil
}
