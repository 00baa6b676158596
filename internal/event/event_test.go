package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/chainduel/internal/state"
)

func TestTimelineGroupsBySimultaneity(t *testing.T) {
	var tl Timeline
	s := state.Snapshot{Turn: 1, Phase: state.PhaseMain1}

	first := tl.Record(1, state.PhaseMain1, New(SpellActivated, s))
	second := tl.Record(1, state.PhaseMain1, New(CardDrawn, s), New(CardDrawn, s))
	empty := tl.Record(1, state.PhaseMain1)

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.Zero(t, empty.Seq)
	require.Equal(t, 2, tl.Len())
	assert.Len(t, tl.History()[1].Events, 2)
	assert.True(t, tl.LastWas(CardDrawn))
	assert.False(t, tl.LastWas(SpellActivated))

	since := tl.Since(1)
	require.Len(t, since, 1)
	assert.Equal(t, 2, since[0].Seq)
	assert.Nil(t, tl.Since(5))
}

func TestTimelineViewDoesNotAlias(t *testing.T) {
	var tl Timeline
	tl.Record(1, state.PhaseDraw, GameEvent{Type: CardDrawn})

	view := tl.View()
	tl.Record(1, state.PhaseDraw, GameEvent{Type: PhaseChanged})
	view.Record(1, state.PhaseDraw, GameEvent{Type: ChainResolved})

	assert.Equal(t, 2, tl.Len())
	assert.True(t, tl.LastWas(PhaseChanged))
	assert.Equal(t, 2, view.Len())
	assert.True(t, view.LastWas(ChainResolved))
}

func TestTimelineRecordIsAmortized(t *testing.T) {
	var tl Timeline
	e := GameEvent{Type: CardDrawn}
	allocs := testing.AllocsPerRun(100, func() {
		tl.Record(1, state.PhaseMain1, e)
	})
	// One clone of the event slice, plus occasional growth of the history.
	assert.LessOrEqual(t, allocs, 3.0)
}

func TestForCardStampsSnapshot(t *testing.T) {
	s := state.Snapshot{Turn: 3, Phase: state.PhaseStandby}
	e := ForCard(CounterAdded, s, state.CardInstance{CardID: 7, InstanceID: "main-1"})
	assert.Equal(t, GameEvent{Type: CounterAdded, CardID: 7, InstanceID: "main-1", Turn: 3, Phase: state.PhaseStandby}, e)
}
