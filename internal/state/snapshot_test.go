package state

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqDeck(n int) DeckList {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 1000 + i
	}
	return DeckList{Main: ids}
}

func mustDuel(t *testing.T, deck DeckList, opts Options) Snapshot {
	t.Helper()
	s, err := NewDuel(deck, opts)
	require.NoError(t, err)
	return s
}

// deepCopy is an independent copy used to prove the original was untouched.
func deepCopy(s Snapshot) Snapshot {
	out := s
	for _, z := range AllZones {
		src := s.Zones.Get(z)
		if src == nil {
			continue
		}
		cp := make([]CardInstance, len(src))
		for i, c := range src {
			c.Counters = append([]Counter(nil), c.Counters...)
			c.ActivatedEffects = append([]string(nil), c.ActivatedEffects...)
			c.TargetIDs = append([]string(nil), c.TargetIDs...)
			cp[i] = c
		}
		out.Zones = out.Zones.with(z, cp)
	}
	out.Chain = append([]ChainLink(nil), s.Chain...)
	out.ActivatedCardIDs = append([]int(nil), s.ActivatedCardIDs...)
	return out
}

func TestNewDuelDealsOpeningHand(t *testing.T) {
	s := mustDuel(t, seqDeck(40), Options{SkipShuffle: true})

	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, PhaseDraw, s.Phase)
	assert.Equal(t, [2]int{StartingLifePoints, StartingLifePoints}, s.LifePoints)
	require.Len(t, s.Zones.Hand, InitialHandSize)
	assert.Len(t, s.Zones.Deck, 35)
	assert.Equal(t, "main-0", s.Zones.Hand[0].InstanceID)
	assert.Equal(t, ZoneHand, s.Zones.Hand[0].Location)
	assert.Equal(t, "main-5", s.Zones.Deck[0].InstanceID)
}

func TestNewDuelSkipInitialDraw(t *testing.T) {
	s := mustDuel(t, DeckList{Main: []int{1, 2, 3}, Extra: []int{9}}, Options{SkipShuffle: true, SkipInitialDraw: true})
	assert.Empty(t, s.Zones.Hand)
	assert.Len(t, s.Zones.Deck, 3)
	require.Len(t, s.Zones.ExtraDeck, 1)
	assert.Equal(t, "extra-0", s.Zones.ExtraDeck[0].InstanceID)
}

func TestNewDuelRejectsShortDeck(t *testing.T) {
	_, err := NewDuel(seqDeck(3), Options{SkipShuffle: true})
	assert.True(t, errors.Is(err, ErrInsufficientDeck))
}

func TestShuffleIsSeeded(t *testing.T) {
	a := mustDuel(t, seqDeck(40), Options{Seed: 7})
	b := mustDuel(t, seqDeck(40), Options{Seed: 7})
	assert.Empty(t, cmp.Diff(a, b))
}

func TestUnseededDuelsShuffleDifferently(t *testing.T) {
	first := mustDuel(t, seqDeck(40), Options{})
	for i := 0; i < 5; i++ {
		if cmp.Diff(first, mustDuel(t, seqDeck(40), Options{})) != "" {
			return
		}
	}
	t.Fatal("five unseeded duels dealt the same order")
}

func TestRandomSeedReplays(t *testing.T) {
	seed := RandomSeed()
	assert.NotZero(t, seed)
	a := mustDuel(t, seqDeck(40), Options{Seed: seed})
	b := mustDuel(t, seqDeck(40), Options{Seed: seed})
	assert.Empty(t, cmp.Diff(a, b))
}

func TestInstanceIDsUnique(t *testing.T) {
	s := mustDuel(t, DeckList{Main: seqDeck(40).Main, Extra: []int{1, 2, 3}}, Options{Seed: 3})
	seen := make(map[string]bool)
	for _, c := range s.All() {
		assert.False(t, seen[c.InstanceID], "duplicate %s", c.InstanceID)
		seen[c.InstanceID] = true
	}
	assert.Len(t, seen, 43)
}

// Draw determinism: the same deck drawn twice gives identical hands.
func TestDrawIsDeterministic(t *testing.T) {
	s := mustDuel(t, DeckList{Main: []int{1, 2, 3}}, Options{SkipShuffle: true, SkipInitialDraw: true})

	a, drawnA, err := s.Draw(2)
	require.NoError(t, err)
	b, drawnB, err := s.Draw(2)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(a, b))
	assert.Empty(t, cmp.Diff(drawnA, drawnB))
	assert.Equal(t, []int{1, 2}, []int{a.Zones.Hand[0].CardID, a.Zones.Hand[1].CardID})
	require.Len(t, a.Zones.Deck, 1)
	assert.Equal(t, 3, a.Zones.Deck[0].CardID)
}

func TestDrawTooManyLeavesStateUnchanged(t *testing.T) {
	s := mustDuel(t, DeckList{Main: []int{1}}, Options{SkipShuffle: true, SkipInitialDraw: true})
	before := deepCopy(s)

	next, drawn, err := s.Draw(2)
	assert.True(t, errors.Is(err, ErrInsufficientDeck))
	assert.Nil(t, drawn)
	assert.Empty(t, cmp.Diff(before, next))
}

func TestDrawNegativeCount(t *testing.T) {
	s := mustDuel(t, DeckList{Main: []int{1, 2}}, Options{SkipShuffle: true, SkipInitialDraw: true})
	next, drawn, err := s.Draw(-1)
	assert.ErrorIs(t, err, ErrInvalidCount)
	assert.Nil(t, drawn)
	assert.Empty(t, cmp.Diff(s, next))
}

func TestOnChain(t *testing.T) {
	s := Snapshot{}.PushLink(ChainLink{Index: 1, InstanceID: "a", SpellSpeed: 1})
	assert.True(t, s.OnChain("a"))
	assert.False(t, s.OnChain("b"))
	assert.False(t, Snapshot{}.OnChain("a"))
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := mustDuel(t, seqDeck(10), Options{SkipShuffle: true})
	id := s.Zones.Hand[0].InstanceID
	before := deepCopy(s)

	moved, err := s.MoveCard(id, ZoneMonster, WithFace(FaceUp), WithPosition(PositionAttack), Placed())
	require.NoError(t, err)
	countered, err := moved.AddCounter(id, "spell", 2, 3)
	require.NoError(t, err)
	_, _, err = countered.Draw(1)
	require.NoError(t, err)
	_ = countered.PushLink(ChainLink{Index: 1, InstanceID: id, SpellSpeed: 1}).
		WithLifePoints(PlayerOpponent, 100).
		MarkActivated(42).
		NextTurn()

	assert.Empty(t, cmp.Diff(before, s), "original snapshot changed")

	c, ok := countered.Find(id)
	require.True(t, ok)
	assert.Equal(t, ZoneMonster, c.Location)
	assert.Equal(t, 2, c.CounterCount("spell"))
	assert.True(t, c.PlacedThisTurn)
}

func TestMoveCardConservesInstances(t *testing.T) {
	s := mustDuel(t, seqDeck(12), Options{SkipShuffle: true})
	total := len(s.All())

	var err error
	for _, c := range s.Zones.Hand[:3] {
		s, err = s.MoveCard(c.InstanceID, ZoneGraveyard)
		require.NoError(t, err)
	}
	s, err = s.MoveCard(s.Zones.Deck[0].InstanceID, ZoneBanished)
	require.NoError(t, err)

	assert.Len(t, s.All(), total)
	assert.Len(t, s.Zones.Graveyard, 3)
	assert.Len(t, s.Zones.Banished, 1)
	for _, c := range s.Zones.Graveyard {
		assert.Equal(t, ZoneGraveyard, c.Location)
		assert.Equal(t, FaceUp, c.Face)
	}
}

func TestMoveCardRespectsCapacity(t *testing.T) {
	s := mustDuel(t, seqDeck(10), Options{SkipShuffle: true})
	var err error
	for _, c := range s.Zones.Hand {
		s, err = s.MoveCard(c.InstanceID, ZoneMonster, WithFace(FaceUp))
		require.NoError(t, err)
	}
	_, err = s.MoveCard(s.Zones.Deck[0].InstanceID, ZoneMonster)
	assert.True(t, errors.Is(err, ErrZoneFull))

	_, err = s.MoveCard("nope", ZoneHand)
	assert.True(t, errors.Is(err, ErrCardNotFound))
}

func TestLeavingFieldClearsCounters(t *testing.T) {
	s := mustDuel(t, seqDeck(10), Options{SkipShuffle: true})
	id := s.Zones.Hand[0].InstanceID
	s, err := s.MoveCard(id, ZoneMonster, WithFace(FaceUp))
	require.NoError(t, err)
	s, err = s.AddCounter(id, "spell", 1, 0)
	require.NoError(t, err)
	s, err = s.MoveCard(id, ZoneGraveyard)
	require.NoError(t, err)

	c, _ := s.Find(id)
	assert.Zero(t, c.CounterCount("spell"))
	assert.Nil(t, c.Counters)
}

func TestCounterBounds(t *testing.T) {
	s := mustDuel(t, seqDeck(10), Options{SkipShuffle: true})
	id := s.Zones.Hand[0].InstanceID

	s, err := s.AddCounter(id, "spell", 5, 3)
	require.NoError(t, err)
	c, _ := s.Find(id)
	assert.Equal(t, 3, c.CounterCount("spell"))

	s, err = s.RemoveCounter(id, "spell", 10)
	require.NoError(t, err)
	c, _ = s.Find(id)
	assert.Zero(t, c.CounterCount("spell"))
	assert.Empty(t, c.Counters)
}

func TestRequiredSpellSpeed(t *testing.T) {
	var s Snapshot
	assert.Equal(t, 1, s.RequiredSpellSpeed())
	s = s.PushLink(ChainLink{Index: 1, SpellSpeed: 1})
	assert.Equal(t, 2, s.RequiredSpellSpeed())
	s = s.PushLink(ChainLink{Index: 2, SpellSpeed: 3})
	assert.Equal(t, 3, s.RequiredSpellSpeed())
	s = s.PopLink().PopLink()
	assert.False(t, s.ChainOpen())
}

func TestNextTurnResetsFlags(t *testing.T) {
	s := mustDuel(t, seqDeck(10), Options{SkipShuffle: true})
	id := s.Zones.Hand[0].InstanceID
	s, err := s.MoveCard(id, ZoneMonster, WithFace(FaceUp), Placed())
	require.NoError(t, err)
	s, err = s.UpdateCard(id, func(c CardInstance) CardInstance { return c.WithActivated("draw") })
	require.NoError(t, err)
	s = s.UseNormalSummon().WithPhase(PhaseEnd).NextTurn()

	c, _ := s.Find(id)
	assert.False(t, c.PlacedThisTurn)
	assert.False(t, c.HasActivated("draw"))
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, PhaseDraw, s.Phase)
	assert.Zero(t, s.NormalSummonsUsed)
}

func TestPhaseOrder(t *testing.T) {
	p := PhaseDraw
	var seen []Phase
	for i := 0; i < 4; i++ {
		seen = append(seen, p)
		next, newTurn := p.Next()
		assert.Equal(t, p == PhaseEnd, newTurn)
		p = next
	}
	assert.Equal(t, []Phase{PhaseDraw, PhaseStandby, PhaseMain1, PhaseEnd}, seen)
	assert.Equal(t, PhaseDraw, p)
}
