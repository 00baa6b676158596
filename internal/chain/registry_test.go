package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/chainduel/internal/state"
	"github.com/peterkuimelis/chainduel/internal/step"
	"github.com/peterkuimelis/chainduel/internal/validation"
)

const (
	slowSpellID = 100 + iota
	quickPlayID
	quickMonsterID
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(Action{CardID: slowSpellID, EffectID: "activate", Name: "Slow", Subtype: NormalSpell}))
	require.NoError(t, r.Register(Action{CardID: quickPlayID, EffectID: "activate", Name: "Quick", Subtype: QuickPlaySpell}))
	require.NoError(t, r.Register(Action{CardID: quickMonsterID, EffectID: "q", Name: "Watcher", Subtype: QuickEffect}))
	return r
}

func testBoard() state.Snapshot {
	s := state.Snapshot{Turn: 1, Phase: state.PhaseMain1, LifePoints: [2]int{8000, 8000}}
	s.Zones.Hand = []state.CardInstance{
		{CardID: slowSpellID, InstanceID: "slow", Location: state.ZoneHand},
		{CardID: quickPlayID, InstanceID: "quick", Location: state.ZoneHand},
	}
	s.Zones.Monster = []state.CardInstance{
		{CardID: quickMonsterID, InstanceID: "mon", Location: state.ZoneMonster, Face: state.FaceUp, Position: state.PositionAttack},
	}
	return s
}

func instanceIDs(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Instance.InstanceID
	}
	return out
}

func TestCollectChainableActionsSpeedGate(t *testing.T) {
	r := testRegistry(t)
	s := testBoard()

	tests := []struct {
		name     string
		s        state.Snapshot
		required int
		exclude  []string
		want     []string
	}{
		{"open board", s, 1, nil, []string{"slow", "quick", "mon"}},
		{"speed 2 skips speed 1", s, 2, nil, []string{"quick", "mon"}},
		{"speed 3 skips everything", s, 3, nil, []string{}},
		{"excluded instance", s, 2, []string{"mon"}, []string{"quick"}},
		{"response to a link", s.PushLink(state.ChainLink{Index: 1, InstanceID: "x", SpellSpeed: 1}), 2, nil, []string{"quick", "mon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.CollectChainableActions(tt.s, tt.required, tt.exclude)
			assert.Equal(t, tt.want, instanceIDs(got))
		})
	}
}

func TestCollectSkipsChainedInstances(t *testing.T) {
	r := testRegistry(t)
	s := testBoard().PushLink(state.ChainLink{Index: 1, InstanceID: "mon", CardID: quickMonsterID, EffectID: "q", SpellSpeed: 2})

	// Not excluded by the caller, but already a link.
	assert.Equal(t, []string{"quick"}, instanceIDs(r.CollectChainableActions(s, s.RequiredSpellSpeed(), nil)))

	a, ok := r.Ignition(quickMonsterID, "q")
	require.True(t, ok)
	res := a.CanActivate(s, s.Zones.Monster[0])
	assert.Equal(t, validation.CodeActivationConditionsNotMet, res.Code)
	assert.Equal(t, "already_chained", res.Params["reason"])
}

func TestCanActivateSpeedTooLow(t *testing.T) {
	r := testRegistry(t)
	s := testBoard().PushLink(state.ChainLink{Index: 1, InstanceID: "x", SpellSpeed: 2})
	a, ok := r.Activation(slowSpellID)
	require.True(t, ok)
	assert.Equal(t, validation.CodeSpellSpeedTooLow, a.CanActivate(s, s.Zones.Hand[0]).Code)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := testRegistry(t)
	assert.ErrorContains(t, r.Register(Action{CardID: slowSpellID, EffectID: "activate", Subtype: NormalSpell}), "already registered")
	assert.ErrorContains(t, r.Register(Action{CardID: quickMonsterID, EffectID: "q", Subtype: QuickEffect}), "already registered")
	assert.Error(t, r.RegisterIgnition(Action{CardID: 1, Subtype: NormalTrap}))
	assert.Error(t, r.RegisterActivation(Action{CardID: 1, Subtype: Ignition}))
}

func TestActivationStepsPlaceAfterCosts(t *testing.T) {
	r := testRegistry(t)
	a, _ := r.Activation(quickPlayID)
	a.Hooks.Activation = func(state.Snapshot, state.CardInstance) []step.AtomicStep {
		return []step.AtomicStep{{ID: "cost", Level: step.Silent}}
	}
	s := testBoard()
	steps := a.CreateActivationSteps(s, s.Zones.Hand[1])
	require.Len(t, steps, 3)
	assert.Equal(t, []string{"cost", "quick/activate/place", "quick/activate/activate"},
		[]string{steps[0].ID, steps[1].ID, steps[2].ID})
}
