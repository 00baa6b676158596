package chain

import (
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// Subtype selects the shared hook set an action composes with.
type Subtype int

const (
	NormalSpell Subtype = iota
	QuickPlaySpell
	ContinuousSpell
	FieldSpell
	NormalTrap
	ContinuousTrap
	Ignition
	QuickEffect
)

func (s Subtype) String() string {
	switch s {
	case NormalSpell:
		return "normal spell"
	case QuickPlaySpell:
		return "quick-play spell"
	case ContinuousSpell:
		return "continuous spell"
	case FieldSpell:
		return "field spell"
	case NormalTrap:
		return "normal trap"
	case ContinuousTrap:
		return "continuous trap"
	case Ignition:
		return "ignition effect"
	case QuickEffect:
		return "quick effect"
	default:
		return "unknown"
	}
}

// IsSpell reports whether the subtype is a spell card activation.
func (s Subtype) IsSpell() bool {
	return s <= FieldSpell
}

func (s Subtype) IsTrap() bool {
	return s == NormalTrap || s == ContinuousTrap
}

// IsCardActivation reports whether activating moves or flips the card itself.
func (s Subtype) IsCardActivation() bool {
	return s.IsSpell() || s.IsTrap()
}

// DefaultSpeed is the spell speed of the subtype when an action leaves
// SpellSpeed unset.
func (s Subtype) DefaultSpeed() int {
	switch s {
	case QuickPlaySpell, NormalTrap, ContinuousTrap, QuickEffect:
		return 2
	default:
		return 1
	}
}

// Category tags what an effect does, for display and filtering.
type Category string

const (
	CategoryDraw    Category = "draw"
	CategoryDestroy Category = "destroy"
	CategoryDamage  Category = "damage"
	CategoryCounter Category = "counter"
	CategoryRecover Category = "recover"
	CategoryDiscard Category = "discard"
	CategoryOther   Category = "other"
)

// Hooks are the card-specific parts of an action. Any of them may be nil.
type Hooks struct {
	// Conditions adds card-specific legality checks.
	Conditions func(s state.Snapshot, src state.CardInstance) validation.Result
	// Activation returns cost and targeting steps, run when the action is activated.
	Activation func(s state.Snapshot, src state.CardInstance) []step.AtomicStep
	// Resolution returns the effect body, run when the chain link resolves.
	Resolution func(s state.Snapshot, src state.CardInstance) []step.AtomicStep
}

// Action describes one chainable thing a card can do. Checks and steps are
// composed from the common hooks, the subtype hooks and the card's Hooks.
type Action struct {
	CardID      int
	EffectID    string
	Name        string
	SpellSpeed  int
	Category    Category
	Subtype     Subtype
	OncePerTurn bool
	// FromZones overrides where an ignition or quick effect can be used.
	FromZones []state.Zone
	Hooks     Hooks
}

// Speed returns the effective spell speed.
func (a Action) Speed() int {
	if a.SpellSpeed > 0 {
		return a.SpellSpeed
	}
	return a.Subtype.DefaultSpeed()
}

// Zones lists where the source card must be for the action to be usable.
func (a Action) Zones() []state.Zone {
	switch a.Subtype {
	case NormalSpell, QuickPlaySpell, ContinuousSpell:
		return []state.Zone{state.ZoneHand, state.ZoneSpellTrap}
	case FieldSpell:
		return []state.Zone{state.ZoneHand, state.ZoneField}
	case NormalTrap, ContinuousTrap:
		return []state.Zone{state.ZoneSpellTrap}
	}
	if len(a.FromZones) > 0 {
		return a.FromZones
	}
	return []state.Zone{state.ZoneMonster, state.ZoneSpellTrap, state.ZoneField}
}

// CanActivate runs the common, subtype and card checks in that order and
// returns the first failure.
func (a Action) CanActivate(s state.Snapshot, src state.CardInstance) validation.Result {
	if r := commonConditions(a, s, src); !r.Valid {
		return r
	}
	if r := subtypeConditions(a, s, src); !r.Valid {
		return r
	}
	if a.Hooks.Conditions != nil {
		return a.Hooks.Conditions(s, src)
	}
	return validation.Success()
}

// CreateActivationSteps returns the steps run at activation: the card's
// costs and targets, the subtype's placement, then the common announcement
// that emits the activation event. Placement comes after the cancelable
// steps so a canceled activation leaves the card where it was.
func (a Action) CreateActivationSteps(s state.Snapshot, src state.CardInstance) []step.AtomicStep {
	var steps []step.AtomicStep
	if a.Hooks.Activation != nil {
		steps = append(steps, a.Hooks.Activation(s, src)...)
	}
	steps = append(steps, subtypeActivation(a, s, src)...)
	return append(steps, announceStep(a, src))
}

// CreateResolutionSteps returns the steps run when the link resolves: the
// card's effect, then the subtype's cleanup.
func (a Action) CreateResolutionSteps(s state.Snapshot, src state.CardInstance) []step.AtomicStep {
	var steps []step.AtomicStep
	if a.Hooks.Resolution != nil {
		steps = append(steps, a.Hooks.Resolution(s, src)...)
	}
	return append(steps, subtypeCleanup(a, src)...)
}
