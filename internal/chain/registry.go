package chain

import (
	"fmt"
	"slices"

	"github.com/peterkuimelis/chainduel/internal/state"
)

// Entry is everything registered for one card id.
type Entry struct {
	Activation *Action
	Ignitions  []Action
}

// Registry maps card ids to their chainable actions. One registry belongs to
// one duel; it is filled during setup and only read afterwards.
type Registry struct {
	entries map[int]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]Entry)}
}

// RegisterActivation sets the card activation for a.CardID.
func (r *Registry) RegisterActivation(a Action) error {
	if !a.Subtype.IsCardActivation() {
		return fmt.Errorf("card %d: %s is not a card activation", a.CardID, a.Subtype)
	}
	e := r.entries[a.CardID]
	if e.Activation != nil {
		return fmt.Errorf("card %d: activation already registered", a.CardID)
	}
	e.Activation = &a
	r.entries[a.CardID] = e
	return nil
}

// RegisterIgnition adds an ignition or quick effect for a.CardID.
func (r *Registry) RegisterIgnition(a Action) error {
	if a.Subtype != Ignition && a.Subtype != QuickEffect {
		return fmt.Errorf("card %d: %s is not an effect", a.CardID, a.Subtype)
	}
	e := r.entries[a.CardID]
	for _, existing := range e.Ignitions {
		if existing.EffectID == a.EffectID {
			return fmt.Errorf("card %d: effect %q already registered", a.CardID, a.EffectID)
		}
	}
	e.Ignitions = append(e.Ignitions, a)
	r.entries[a.CardID] = e
	return nil
}

// Register adds a as either an activation or an effect, by subtype.
func (r *Registry) Register(a Action) error {
	if a.Subtype.IsCardActivation() {
		return r.RegisterActivation(a)
	}
	return r.RegisterIgnition(a)
}

func (r *Registry) Lookup(cardID int) (Entry, bool) {
	e, ok := r.entries[cardID]
	return e, ok
}

func (r *Registry) Activation(cardID int) (Action, bool) {
	e, ok := r.entries[cardID]
	if !ok || e.Activation == nil {
		return Action{}, false
	}
	return *e.Activation, true
}

// Ignition finds an effect by id. An empty id selects the card's first effect.
func (r *Registry) Ignition(cardID int, effectID string) (Action, bool) {
	for _, a := range r.entries[cardID].Ignitions {
		if effectID == "" || a.EffectID == effectID {
			return a, true
		}
	}
	return Action{}, false
}

// Candidate is an action that can be activated right now from a specific card.
type Candidate struct {
	Instance state.CardInstance
	Action   Action
}

// CollectChainableActions scans every zone and returns the actions that could
// be activated at requiredSpeed or faster, skipping excluded instances.
// Results follow zone scan order, then zone order, then registration order.
func (r *Registry) CollectChainableActions(s state.Snapshot, requiredSpeed int, exclude []string) []Candidate {
	var out []Candidate
	for _, zone := range state.AllZones {
		for _, inst := range s.Zones.Get(zone) {
			if slices.Contains(exclude, inst.InstanceID) {
				continue
			}
			e, ok := r.entries[inst.CardID]
			if !ok {
				continue
			}
			if e.Activation != nil {
				out = r.consider(out, s, inst, *e.Activation, requiredSpeed)
			}
			for _, a := range e.Ignitions {
				out = r.consider(out, s, inst, a, requiredSpeed)
			}
		}
	}
	return out
}

func (r *Registry) consider(out []Candidate, s state.Snapshot, inst state.CardInstance, a Action, requiredSpeed int) []Candidate {
	if a.Speed() < requiredSpeed || !slices.Contains(a.Zones(), inst.Location) {
		return out
	}
	if !a.CanActivate(s, inst).Valid {
		return out
	}
	return append(out, Candidate{Instance: inst, Action: a})
}
