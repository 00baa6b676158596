package state

import (
	"fmt"
	"math/rand"
)

// DeckList is the ordered card ids of a main deck and an extra deck.
type DeckList struct {
	Main  []int
	Extra []int
}

// Options controls duel setup.
type Options struct {
	SkipShuffle     bool
	SkipInitialDraw bool
	// Seed feeds the shuffle. Equal seeds produce equal decks; 0 picks a
	// random seed.
	Seed               int64
	StartingLifePoints int
}

// NewDuel builds the turn 1 Draw Phase snapshot. Main deck instances are
// numbered "main-<i>" and extra deck instances "extra-<i>" by their list
// position, so ids are stable regardless of shuffling.
func NewDuel(deck DeckList, opts Options) (Snapshot, error) {
	lp := opts.StartingLifePoints
	if lp <= 0 {
		lp = StartingLifePoints
	}

	main := make([]CardInstance, len(deck.Main))
	for i, id := range deck.Main {
		main[i] = CardInstance{CardID: id, InstanceID: fmt.Sprintf("main-%d", i), Location: ZoneDeck}
	}
	extra := make([]CardInstance, len(deck.Extra))
	for i, id := range deck.Extra {
		extra[i] = CardInstance{CardID: id, InstanceID: fmt.Sprintf("extra-%d", i), Location: ZoneExtraDeck}
	}

	if !opts.SkipShuffle {
		seed := opts.Seed
		if seed == 0 {
			seed = RandomSeed()
		}
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(main), func(i, j int) {
			main[i], main[j] = main[j], main[i]
		})
	}

	s := Snapshot{
		Turn:              1,
		Phase:             PhaseDraw,
		LifePoints:        [2]int{lp, lp},
		Zones:             Zones{Deck: main, ExtraDeck: extra},
		NormalSummonLimit: 1,
	}
	if len(s.Zones.ExtraDeck) == 0 {
		s.Zones.ExtraDeck = nil
	}

	if !opts.SkipInitialDraw {
		var err error
		s, _, err = s.Draw(InitialHandSize)
		if err != nil {
			return Snapshot{}, fmt.Errorf("opening hand: %w", err)
		}
	}
	return s, nil
}

// RandomSeed returns a non-zero shuffle seed. Passing it back through
// Options.Seed replays the same deck order.
func RandomSeed() int64 {
	for {
		if seed := rand.Int63(); seed != 0 {
			return seed
		}
	}
}
