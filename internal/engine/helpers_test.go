package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/command"
	"github.com/peterkuimelis/chainduel/internal/library"
	"github.com/peterkuimelis/chainduel/internal/log"
	"github.com/peterkuimelis/chainduel/internal/rule"
	"github.com/peterkuimelis/chainduel/internal/state"
)

func newEnv(t *testing.T, extra ...library.Definition) *command.Env {
	t.Helper()
	cat := card.NewCatalog()
	actions := chain.NewRegistry()
	rules := rule.NewRegistry()
	defs := append(library.Standard(rules), extra...)
	require.NoError(t, library.Install(defs, cat, actions, rules))
	return &command.Env{Cards: cat, Actions: actions, Rules: rules, ForbiddenPieces: library.ForbiddenPieces}
}

// board builds a Main Phase 1 snapshot. Hand instances are "h<i>" and deck
// instances "d<i>", with d0 on the draw end.
func board(hand, deck []int) state.Snapshot {
	s := state.Snapshot{
		Turn:              1,
		Phase:             state.PhaseMain1,
		LifePoints:        [2]int{state.StartingLifePoints, state.StartingLifePoints},
		NormalSummonLimit: 1,
	}
	for i, id := range hand {
		s.Zones.Hand = append(s.Zones.Hand, state.CardInstance{CardID: id, InstanceID: fmt.Sprintf("h%d", i), Location: state.ZoneHand})
	}
	for i, id := range deck {
		s.Zones.Deck = append(s.Zones.Deck, state.CardInstance{CardID: id, InstanceID: fmt.Sprintf("d%d", i), Location: state.ZoneDeck})
	}
	return s
}

// fillers returns n vanilla monster ids for padding a deck.
func fillers(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = library.CelticGuardianID
	}
	return ids
}

// withCard puts a card straight into a zone.
func withCard(s state.Snapshot, zone state.Zone, instanceID string, cardID int, face state.Face) state.Snapshot {
	c := state.CardInstance{CardID: cardID, InstanceID: instanceID, Location: zone, Face: face}
	if zone == state.ZoneMonster {
		c.Position = state.PositionAttack
	}
	switch zone {
	case state.ZoneMonster:
		s.Zones.Monster = append(s.Zones.Monster, c)
	case state.ZoneSpellTrap:
		s.Zones.SpellTrap = append(s.Zones.SpellTrap, c)
	case state.ZoneField:
		s.Zones.Field = append(s.Zones.Field, c)
	case state.ZoneHand:
		s.Zones.Hand = append(s.Zones.Hand, c)
	case state.ZoneGraveyard:
		s.Zones.Graveyard = append(s.Zones.Graveyard, c)
	}
	return s
}

func newSession(t *testing.T, env *command.Env, s state.Snapshot, opts ...Option) (*Session, *log.MemoryLogger) {
	t.Helper()
	journal := log.NewMemoryLogger()
	opts = append([]Option{WithJournal(journal)}, opts...)
	return New(env, s, opts...), journal
}

func exec(t *testing.T, sess *Session, cmd command.Command) Outcome {
	t.Helper()
	out, err := sess.Execute(context.Background(), cmd)
	require.NoError(t, err)
	return out
}

func ids(cards []state.CardInstance) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.InstanceID
	}
	return out
}

func find(t *testing.T, s state.Snapshot, id string) state.CardInstance {
	t.Helper()
	c, ok := s.Find(id)
	require.True(t, ok, "card %s not found", id)
	return c
}
