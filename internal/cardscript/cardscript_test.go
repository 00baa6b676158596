package cardscript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/command"
	"github.com/peterkuimelis/chainduel/internal/engine"
	"github.com/peterkuimelis/chainduel/internal/library"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

const script = `
cards:
  - id: 900100
    name: Sanctity
    kind: spell
    subtype: normal
    effects:
      - type: normal-spell
        require: {deck: 2}
        resolve:
          - {op: draw, count: 2}
  - id: 900101
    name: Blaze
    kind: spell
    subtype: quick-play
    effects:
      - type: quick-play
        category: damage
        resolve:
          - {op: damage, amount: 500}
  - id: 900102
    name: Apprentice
    kind: monster
    subtype: effect
    level: 2
    triggers:
      - event: spell_activated
        timing: if
        do:
          - {op: add_counter, type: spell, count: 1, max: 2}
    effects:
      - id: cash-in
        type: ignition
        once_per_turn: true
        require:
          counters: {type: spell, count: 2}
        cost:
          - {op: remove_counter, type: spell, count: 2}
        resolve:
          - {op: draw, count: 1}
  - id: 900103
    name: Stalemate Field
    kind: spell
    subtype: field
    effects:
      - type: field
    permissions:
      - kind: damage
        deny: lower_life
`

func compile(t *testing.T, perm rule.Permitter) []library.Definition {
	t.Helper()
	f, err := Parse([]byte(script))
	require.NoError(t, err)
	defs, err := f.Compile(perm)
	require.NoError(t, err)
	return defs
}

func TestCompileDescriptors(t *testing.T) {
	defs := compile(t, nil)
	require.Len(t, defs, 4)

	sanctity := defs[0]
	assert.Equal(t, card.KindSpell, sanctity.Data.Kind)
	require.Len(t, sanctity.Actions, 1)
	assert.Equal(t, "activate", sanctity.Actions[0].EffectID)
	assert.Equal(t, chain.NormalSpell, sanctity.Actions[0].Subtype)
	assert.Equal(t, 1, sanctity.Actions[0].Speed())

	blaze := defs[1]
	assert.Equal(t, 2, blaze.Actions[0].Speed())
	assert.Equal(t, chain.CategoryDamage, blaze.Actions[0].Category)

	apprentice := defs[2]
	require.Len(t, apprentice.Rules, 1)
	assert.Equal(t, rule.TimingIf, apprentice.Rules[0].Trigger.Timing)
	assert.True(t, apprentice.Actions[0].OncePerTurn)

	field := defs[3]
	require.Len(t, field.Rules, 1)
	assert.Equal(t, rule.CategoryPermission, field.Rules[0].Category)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"unknown kind", "cards: [{id: 1, name: A, kind: relic}]", "unknown card kind"},
		{"missing name", "cards: [{id: 1, kind: spell}]", "id and name are required"},
		{"duplicate", "cards: [{id: 1, name: A, kind: spell}, {id: 1, name: B, kind: spell}]", "duplicate id"},
		{"unknown type", "cards: [{id: 1, name: A, kind: spell, effects: [{type: ritual}]}]", "unknown effect type"},
		{"unknown op", "cards: [{id: 1, name: A, kind: spell, effects: [{type: normal-spell, resolve: [{op: explode}]}]}]", "unknown op"},
		{"zero draw", "cards: [{id: 1, name: A, kind: spell, effects: [{type: normal-spell, resolve: [{op: draw}]}]}]", "count must be positive"},
		{"bad target", "cards: [{id: 1, name: A, kind: spell, effects: [{type: normal-spell, resolve: [{op: damage, amount: 1, target: both}]}]}]", "unknown target"},
		{"bad event", "cards: [{id: 1, name: A, kind: monster, triggers: [{event: sneezed, do: [{op: draw, count: 1}]}]}]", "unknown event"},
		{"bad timing", "cards: [{id: 1, name: A, kind: monster, triggers: [{event: card_drawn, timing: maybe, do: [{op: draw, count: 1}]}]}]", "unknown timing"},
		{"empty trigger", "cards: [{id: 1, name: A, kind: monster, triggers: [{event: card_drawn}]}]", "does nothing"},
		{"bad permission", "cards: [{id: 1, name: A, kind: spell, permissions: [{kind: summon, deny: lower_life}]}]", "unknown permission kind"},
		{"bad speed", "cards: [{id: 1, name: A, kind: spell, effects: [{type: quick-play, speed: 4}]}]", "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = f.Compile(nil)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("cards: [{id: 1, name: A, kind: spell, colour: red}]"))
	assert.Error(t, err)
}

func newSession(t *testing.T, s state.Snapshot) (*engine.Session, *command.Env) {
	t.Helper()
	cat, actions, rules := card.NewCatalog(), chain.NewRegistry(), rule.NewRegistry()
	require.NoError(t, library.Install(compile(t, rules), cat, actions, rules))
	env := &command.Env{Cards: cat, Actions: actions, Rules: rules}
	return engine.New(env, s), env
}

func board(hand []int, deck int) state.Snapshot {
	s := state.Snapshot{Turn: 1, Phase: state.PhaseMain1, LifePoints: [2]int{8000, 8000}, NormalSummonLimit: 1}
	for i, id := range hand {
		s.Zones.Hand = append(s.Zones.Hand, state.CardInstance{CardID: id, InstanceID: fmt.Sprintf("h%d", i), Location: state.ZoneHand})
	}
	for i := 0; i < deck; i++ {
		s.Zones.Deck = append(s.Zones.Deck, state.CardInstance{CardID: 900102, InstanceID: fmt.Sprintf("d%d", i), Location: state.ZoneDeck})
	}
	return s
}

func TestScriptedCardsPlay(t *testing.T) {
	ctx := context.Background()
	s := board([]int{900100, 900100, 900101}, 6)
	s.Zones.Monster = []state.CardInstance{{CardID: 900102, InstanceID: "app", Location: state.ZoneMonster, Face: state.FaceUp}}
	sess, env := newSession(t, s)

	// Blaze first: while it sits in hand it could respond to Sanctity.
	for _, id := range []string{"h2", "h0", "h1"} {
		out, err := sess.Execute(ctx, command.NewActivateSpell(env, id))
		require.NoError(t, err)
		require.Equal(t, engine.Done, out.Kind, id)
		require.NoError(t, out.Err)
	}

	got := sess.State()
	app, _ := got.Find("app")
	assert.Equal(t, 2, app.CounterCount("spell"))
	assert.Equal(t, 7500, got.LP(state.PlayerOpponent))
	assert.Len(t, got.Zones.Hand, 4)

	out, err := sess.Execute(ctx, command.NewActivateIgnition(env, "app", "cash-in"))
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.Len(t, out.State.Zones.Hand, 5)

	out, err = sess.Execute(ctx, command.NewActivateIgnition(env, "app", "cash-in"))
	require.NoError(t, err)
	assert.Equal(t, engine.Rejected, out.Kind)
	assert.Equal(t, validation.CodeEffectAlreadyActivated, out.Validation.Code)
}

func TestScriptedPermission(t *testing.T) {
	s := board([]int{900101}, 2).WithLifePoints(state.PlayerOpponent, 6000)
	s.Zones.Field = []state.CardInstance{{CardID: 900103, InstanceID: "fld", Location: state.ZoneField, Face: state.FaceUp}}
	sess, env := newSession(t, s)

	out, err := sess.Execute(context.Background(), command.NewActivateSpell(env, "h0"))
	require.NoError(t, err)
	assert.Equal(t, 6000, out.State.LP(state.PlayerOpponent))
}

func TestLoadBundledCards(t *testing.T) {
	path := filepath.Join("..", "..", "cards", "extra.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("bundled card file not present")
	}
	defs, err := Load(path, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, defs)
}
