// Package cardscript compiles YAML card definitions into the same
// descriptors hand-written cards use.
//
// A file holds a list of cards:
//
//	cards:
//	  - id: 900100
//	    name: Card of Sanctity
//	    kind: spell
//	    subtype: normal
//	    effects:
//	      - type: normal-spell
//	        require: {deck: 2}
//	        resolve:
//	          - {op: draw, count: 2}
//
// Monsters carry triggers; field and continuous cards carry permissions.
package cardscript

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/event"
	"github.com/peterkuimelis/chainduel/internal/library"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

// File is the top-level YAML structure.
type File struct {
	Cards []Card `yaml:"cards"`
}

type Card struct {
	ID          int          `yaml:"id"`
	Name        string       `yaml:"name"`
	Kind        string       `yaml:"kind"`
	Subtype     string       `yaml:"subtype"`
	Level       int          `yaml:"level,omitempty"`
	ATK         int          `yaml:"atk,omitempty"`
	DEF         int          `yaml:"def,omitempty"`
	Text        string       `yaml:"text,omitempty"`
	Effects     []Effect     `yaml:"effects,omitempty"`
	Triggers    []Trigger    `yaml:"triggers,omitempty"`
	Permissions []Permission `yaml:"permissions,omitempty"`
}

type Effect struct {
	ID          string  `yaml:"id,omitempty"`
	Name        string  `yaml:"name,omitempty"`
	Type        string  `yaml:"type"`
	Speed       int     `yaml:"speed,omitempty"`
	Category    string  `yaml:"category,omitempty"`
	OncePerTurn bool    `yaml:"once_per_turn,omitempty"`
	Require     Require `yaml:"require,omitempty"`
	Cost        []Op    `yaml:"cost,omitempty"`
	Resolve     []Op    `yaml:"resolve,omitempty"`
}

// Require lists activation conditions. Zero values are not checked.
type Require struct {
	Deck     int          `yaml:"deck,omitempty"`
	Life     int          `yaml:"life,omitempty"`
	Counters *CounterNeed `yaml:"counters,omitempty"`
	Target   bool         `yaml:"target,omitempty"`
}

type CounterNeed struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

type Trigger struct {
	Event  string `yaml:"event"`
	Timing string `yaml:"timing,omitempty"` // "if" (default) or "when"
	Do     []Op   `yaml:"do"`
}

type Permission struct {
	Kind string `yaml:"kind"` // "damage"
	Deny string `yaml:"deny"` // "lower_life"
}

// Op is one effect operation.
type Op struct {
	Op     string `yaml:"op"`
	Count  int    `yaml:"count,omitempty"`
	Amount int    `yaml:"amount,omitempty"`
	Target string `yaml:"target,omitempty"` // "self" or "opponent"
	Type   string `yaml:"type,omitempty"`
	Max    int    `yaml:"max,omitempty"`
}

// Parse decodes a card file, rejecting unknown keys.
func Parse(data []byte) (File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse card YAML: %w", err)
	}
	return f, nil
}

// Load reads, parses and compiles the card file at path.
func Load(path string, perm rule.Permitter) ([]library.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defs, err := f.Compile(perm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Compile turns every card into a definition. perm answers damage
// permissions for damage ops.
func (f File) Compile(perm rule.Permitter) ([]library.Definition, error) {
	seen := make(map[int]bool, len(f.Cards))
	defs := make([]library.Definition, 0, len(f.Cards))
	for i, c := range f.Cards {
		if seen[c.ID] {
			return nil, fmt.Errorf("card %d: duplicate id %d", i, c.ID)
		}
		seen[c.ID] = true
		d, err := c.compile(perm)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", c.Name, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func (c Card) compile(perm rule.Permitter) (library.Definition, error) {
	if c.ID <= 0 || c.Name == "" {
		return library.Definition{}, fmt.Errorf("id and name are required")
	}
	kind, err := card.ParseKind(c.Kind)
	if err != nil {
		return library.Definition{}, err
	}
	def := library.Definition{Data: card.Data{
		ID:      c.ID,
		Name:    c.Name,
		Kind:    kind,
		Subtype: c.Subtype,
		Level:   c.Level,
		ATK:     c.ATK,
		DEF:     c.DEF,
		Text:    c.Text,
	}}

	for i, e := range c.Effects {
		a, err := e.compile(c, i, perm)
		if err != nil {
			return library.Definition{}, fmt.Errorf("effect %d: %w", i, err)
		}
		def.Actions = append(def.Actions, a)
	}
	for i, t := range c.Triggers {
		r, err := t.compile(c, i, perm)
		if err != nil {
			return library.Definition{}, fmt.Errorf("trigger %d: %w", i, err)
		}
		def.Rules = append(def.Rules, r)
	}
	for i, p := range c.Permissions {
		r, err := p.compile(c, i)
		if err != nil {
			return library.Definition{}, fmt.Errorf("permission %d: %w", i, err)
		}
		def.Rules = append(def.Rules, r)
	}
	return def, nil
}

var subtypes = map[string]chain.Subtype{
	"normal-spell":     chain.NormalSpell,
	"quick-play":       chain.QuickPlaySpell,
	"continuous-spell": chain.ContinuousSpell,
	"field":            chain.FieldSpell,
	"normal-trap":      chain.NormalTrap,
	"continuous-trap":  chain.ContinuousTrap,
	"ignition":         chain.Ignition,
	"quick":            chain.QuickEffect,
}

func (e Effect) compile(c Card, index int, perm rule.Permitter) (chain.Action, error) {
	st, ok := subtypes[e.Type]
	if !ok {
		return chain.Action{}, fmt.Errorf("unknown effect type %q", e.Type)
	}
	if e.Speed < 0 || e.Speed > 3 {
		return chain.Action{}, fmt.Errorf("spell speed %d out of range", e.Speed)
	}
	id := e.ID
	if id == "" {
		id = "activate"
		if !st.IsCardActivation() {
			id = fmt.Sprintf("effect-%d", index)
		}
	}
	name := e.Name
	if name == "" {
		name = c.Name
	}
	category := chain.Category(e.Category)
	if category == "" {
		category = chain.CategoryOther
	}

	cost, err := compileOps(e.Cost, "cost", perm)
	if err != nil {
		return chain.Action{}, err
	}
	resolve, err := compileOps(e.Resolve, "resolve", perm)
	if err != nil {
		return chain.Action{}, err
	}

	a := chain.Action{
		CardID:      c.ID,
		EffectID:    id,
		Name:        name,
		SpellSpeed:  e.Speed,
		Category:    category,
		Subtype:     st,
		OncePerTurn: e.OncePerTurn,
	}
	a.Hooks.Conditions = e.Require.check()
	if len(cost) > 0 {
		a.Hooks.Activation = cost.steps
	}
	if len(resolve) > 0 {
		a.Hooks.Resolution = resolve.steps
	}
	return a, nil
}

func (r Require) check() func(state.Snapshot, state.CardInstance) validation.Result {
	if r == (Require{}) {
		return nil
	}
	return func(s state.Snapshot, src state.CardInstance) validation.Result {
		if r.Deck > 0 && len(s.Zones.Deck) < r.Deck {
			return validation.Failure(validation.CodeInsufficientDeck, "required", r.Deck, "available", len(s.Zones.Deck))
		}
		if r.Life > 0 && s.LP(state.PlayerSelf) < r.Life {
			return validation.Failure(validation.CodeInsufficientLifePoints, "required", r.Life)
		}
		if r.Counters != nil {
			if have := src.CounterCount(r.Counters.Type); have < r.Counters.Count {
				return validation.Failure(validation.CodeInsufficientCounters, "required", r.Counters.Count, "available", have)
			}
		}
		if r.Target && len(fieldTargets(src)(s)) == 0 {
			return validation.Failure(validation.CodeActivationConditionsNotMet, "reason", "no_target")
		}
		return validation.Success()
	}
}

func (t Trigger) compile(c Card, index int, perm rule.Permitter) (rule.AdditionalRule, error) {
	if !knownEvent(event.Type(t.Event)) {
		return rule.AdditionalRule{}, fmt.Errorf("unknown event %q", t.Event)
	}
	timing := rule.TimingIf
	switch t.Timing {
	case "", "if":
	case "when":
		timing = rule.TimingWhen
	default:
		return rule.AdditionalRule{}, fmt.Errorf("unknown timing %q", t.Timing)
	}
	ops, err := compileOps(t.Do, "do", perm)
	if err != nil {
		return rule.AdditionalRule{}, err
	}
	if len(ops) == 0 {
		return rule.AdditionalRule{}, fmt.Errorf("trigger does nothing")
	}
	return rule.Trigger(rule.TriggerRule{
		ID:     fmt.Sprintf("%d/trigger-%d", c.ID, index),
		CardID: c.ID,
		Event:  event.Type(t.Event),
		Timing: timing,
		Steps:  ops.triggered,
	}), nil
}

func (p Permission) compile(c Card, index int) (rule.AdditionalRule, error) {
	if p.Kind != string(rule.PermitDamage) {
		return rule.AdditionalRule{}, fmt.Errorf("unknown permission kind %q", p.Kind)
	}
	if p.Deny != "lower_life" {
		return rule.AdditionalRule{}, fmt.Errorf("unknown permission condition %q", p.Deny)
	}
	return rule.Permission(rule.ActionPermission{
		ID:     fmt.Sprintf("%d/permission-%d", c.ID, index),
		CardID: c.ID,
		Kind:   rule.PermitDamage,
		Check: func(s state.Snapshot, _ state.CardInstance, ctx rule.PermissionContext) bool {
			return s.LP(ctx.Target) >= s.LP(ctx.Target.Opponent())
		},
	}), nil
}

func knownEvent(t event.Type) bool {
	switch t {
	case event.CardDrawn, event.SpellActivated, event.TrapActivated, event.EffectActivated,
		event.MonsterSummoned, event.MonsterSet, event.CardSet, event.CardSentToGrave,
		event.CardDestroyed, event.CardDiscarded, event.CounterAdded, event.CounterRemoved,
		event.DamageDealt, event.LifeGained, event.LifePaid, event.PhaseChanged,
		event.ChainLinked, event.ChainResolved:
		return true
	}
	return false
}
