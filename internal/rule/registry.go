package rule

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

// Permitter answers whether an action is currently allowed.
type Permitter interface {
	Permit(s state.Snapshot, ctx PermissionContext) bool
}

// Registry holds the additional rules of one duel, keyed by card id.
type Registry struct {
	rules map[int][]AdditionalRule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[int][]AdditionalRule)}
}

func (r *Registry) Register(ar AdditionalRule) error {
	if err := ar.validate(); err != nil {
		return fmt.Errorf("card %d: %w", ar.cardID(), err)
	}
	id := ar.cardID()
	r.rules[id] = append(r.rules[id], ar)
	return nil
}

func (r *Registry) Rules(cardID int) []AdditionalRule {
	return append([]AdditionalRule(nil), r.rules[cardID]...)
}

// TriggerSteps returns the steps of every trigger that applies to events,
// in field order per event. When latest is false, "when" triggers are
// skipped because something else happened after their event.
func (r *Registry) TriggerSteps(s state.Snapshot, events []event.GameEvent, latest bool) []step.AtomicStep {
	if len(r.rules) == 0 {
		return nil
	}
	sources := s.All()
	var steps []step.AtomicStep
	for _, e := range events {
		for _, src := range sources {
			for _, ar := range r.rules[src.CardID] {
				t := ar.Trigger
				if t == nil || t.Event != e.Type {
					continue
				}
				if t.Timing == TimingWhen && !latest {
					continue
				}
				if !t.applies(s, src) {
					continue
				}
				steps = append(steps, t.Steps(s, src, e)...)
			}
		}
	}
	return steps
}

// Permit reports whether every applicable permission allows the action.
func (r *Registry) Permit(s state.Snapshot, ctx PermissionContext) bool {
	for _, src := range s.All() {
		for _, ar := range r.rules[src.CardID] {
			p := ar.Permission
			if p == nil || !p.applies(s, src, ctx) {
				continue
			}
			if !p.Check(s, src, ctx) {
				return false
			}
		}
	}
	return true
}
