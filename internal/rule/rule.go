package rule

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
)

// Category distinguishes the two kinds of always-on rules a card can carry.
type Category int

const (
	CategoryTrigger Category = iota
	CategoryPermission
)

func (c Category) String() string {
	if c == CategoryPermission {
		return "ActionPermission"
	}
	return "TriggerRule"
}

// Timing says whether a trigger can miss timing.
type Timing int

const (
	// TimingIf triggers fire for their event no matter what happened after it.
	TimingIf Timing = iota
	// TimingWhen triggers only fire if their event was the last thing to happen.
	TimingWhen
)

// TriggerRule reacts to an event by producing steps.
type TriggerRule struct {
	ID     string
	CardID int
	Event  event.Type
	Timing Timing
	// CanApply defaults to "source is face-up on the field".
	CanApply func(s state.Snapshot, src state.CardInstance) bool
	Steps    func(s state.Snapshot, src state.CardInstance, e event.GameEvent) []step.AtomicStep
}

func (r TriggerRule) applies(s state.Snapshot, src state.CardInstance) bool {
	if r.CanApply != nil {
		return r.CanApply(s, src)
	}
	return src.FaceUpOnField()
}

// PermissionKind names an action permissions can veto.
type PermissionKind string

const (
	PermitDamage PermissionKind = "damage"
)

// PermissionContext describes the action being asked about.
type PermissionContext struct {
	Kind     PermissionKind
	Target   state.Player
	Amount   int
	SourceID string
}

// ActionPermission can forbid an action while it applies.
type ActionPermission struct {
	ID     string
	CardID int
	Kind   PermissionKind
	// CanApply defaults to "source is face-up on the field".
	CanApply func(s state.Snapshot, src state.CardInstance, ctx PermissionContext) bool
	Check    func(s state.Snapshot, src state.CardInstance, ctx PermissionContext) bool
}

func (p ActionPermission) applies(s state.Snapshot, src state.CardInstance, ctx PermissionContext) bool {
	if p.Kind != ctx.Kind {
		return false
	}
	if p.CanApply != nil {
		return p.CanApply(s, src, ctx)
	}
	return src.FaceUpOnField()
}

// AdditionalRule is either a trigger or a permission.
type AdditionalRule struct {
	Category   Category
	Trigger    *TriggerRule
	Permission *ActionPermission
}

func Trigger(r TriggerRule) AdditionalRule {
	return AdditionalRule{Category: CategoryTrigger, Trigger: &r}
}

func Permission(p ActionPermission) AdditionalRule {
	return AdditionalRule{Category: CategoryPermission, Permission: &p}
}

func (ar AdditionalRule) cardID() int {
	if ar.Trigger != nil {
		return ar.Trigger.CardID
	}
	if ar.Permission != nil {
		return ar.Permission.CardID
	}
	return 0
}

func (ar AdditionalRule) validate() error {
	switch ar.Category {
	case CategoryTrigger:
		if ar.Trigger == nil || ar.Trigger.Steps == nil {
			return fmt.Errorf("trigger rule without steps")
		}
	case CategoryPermission:
		if ar.Permission == nil || ar.Permission.Check == nil {
			return fmt.Errorf("permission rule without check")
		}
	default:
		return fmt.Errorf("unknown rule category %d", ar.Category)
	}
	return nil
}
