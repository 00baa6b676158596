package state

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrCardNotFound     = errors.New("card not found")
	ErrZoneFull         = errors.New("zone full")
	ErrInsufficientDeck = errors.New("not enough cards in deck")
	ErrInvalidCount     = errors.New("count must not be negative")
)

// Zones holds the eight named card areas of a duel. The deck is ordered with
// the draw end at index 0.
type Zones struct {
	Deck      []CardInstance
	Hand      []CardInstance
	ExtraDeck []CardInstance
	Monster   []CardInstance
	SpellTrap []CardInstance
	Field     []CardInstance
	Graveyard []CardInstance
	Banished  []CardInstance
}

// Get returns the cards in zone z. Callers must not write into the result.
func (z Zones) Get(zone Zone) []CardInstance {
	switch zone {
	case ZoneDeck:
		return z.Deck
	case ZoneHand:
		return z.Hand
	case ZoneExtraDeck:
		return z.ExtraDeck
	case ZoneMonster:
		return z.Monster
	case ZoneSpellTrap:
		return z.SpellTrap
	case ZoneField:
		return z.Field
	case ZoneGraveyard:
		return z.Graveyard
	case ZoneBanished:
		return z.Banished
	}
	return nil
}

func (z Zones) with(zone Zone, cards []CardInstance) Zones {
	switch zone {
	case ZoneDeck:
		z.Deck = cards
	case ZoneHand:
		z.Hand = cards
	case ZoneExtraDeck:
		z.ExtraDeck = cards
	case ZoneMonster:
		z.Monster = cards
	case ZoneSpellTrap:
		z.SpellTrap = cards
	case ZoneField:
		z.Field = cards
	case ZoneGraveyard:
		z.Graveyard = cards
	case ZoneBanished:
		z.Banished = cards
	}
	return z
}

// ChainLink is the data half of a chain block. Resolution steps are held by
// the engine alongside it.
type ChainLink struct {
	Index      int
	InstanceID string
	CardID     int
	EffectID   string
	SpellSpeed int
}

// Result records how the duel ended.
type Result struct {
	Over   bool
	Winner Player
	Reason string
}

// Snapshot is the complete, immutable state of a duel at one instant. Every
// transition returns a new Snapshot and leaves the receiver untouched.
type Snapshot struct {
	Turn       int
	Phase      Phase
	LifePoints [2]int
	Zones      Zones
	Chain      []ChainLink
	Result     Result

	NormalSummonLimit int
	NormalSummonsUsed int
	ActivatedCardIDs  []int
}

// LP returns p's life points.
func (s Snapshot) LP(p Player) int {
	return s.LifePoints[p]
}

func (s Snapshot) IsOver() bool {
	return s.Result.Over
}

func (s Snapshot) ChainOpen() bool {
	return len(s.Chain) > 0
}

// TopLink returns the most recent chain link.
func (s Snapshot) TopLink() (ChainLink, bool) {
	if len(s.Chain) == 0 {
		return ChainLink{}, false
	}
	return s.Chain[len(s.Chain)-1], true
}

// OnChain reports whether the instance is the source of an open chain link.
func (s Snapshot) OnChain(instanceID string) bool {
	return slices.ContainsFunc(s.Chain, func(l ChainLink) bool { return l.InstanceID == instanceID })
}

// RequiredSpellSpeed is the minimum spell speed that may be activated now:
// 1 on an empty chain, otherwise at least 2 and never below the top link.
func (s Snapshot) RequiredSpellSpeed() int {
	top, ok := s.TopLink()
	if !ok {
		return 1
	}
	return max(2, top.SpellSpeed)
}

// Find locates an instance anywhere in the snapshot.
func (s Snapshot) Find(instanceID string) (CardInstance, bool) {
	for _, z := range AllZones {
		for _, c := range s.Zones.Get(z) {
			if c.InstanceID == instanceID {
				return c, true
			}
		}
	}
	return CardInstance{}, false
}

// All returns every instance in zone scan order.
func (s Snapshot) All() []CardInstance {
	var out []CardInstance
	for _, z := range AllZones {
		out = append(out, s.Zones.Get(z)...)
	}
	return out
}

// FaceUpOnField returns face-up cards on the field in monster, spell/trap,
// field zone order.
func (s Snapshot) FaceUpOnField() []CardInstance {
	var out []CardInstance
	for _, z := range []Zone{ZoneMonster, ZoneSpellTrap, ZoneField} {
		for _, c := range s.Zones.Get(z) {
			if c.Face == FaceUp {
				out = append(out, c)
			}
		}
	}
	return out
}

// HasRoom reports whether zone can take one more card.
func (s Snapshot) HasRoom(zone Zone) bool {
	capacity := zone.Capacity()
	return capacity == 0 || len(s.Zones.Get(zone)) < capacity
}

func (s Snapshot) HasActivatedCard(cardID int) bool {
	return slices.Contains(s.ActivatedCardIDs, cardID)
}

// --- Transitions ---

// MoveOption adjusts a card as it arrives in its new zone.
type MoveOption func(CardInstance) CardInstance

func WithFace(f Face) MoveOption {
	return func(c CardInstance) CardInstance {
		c.Face = f
		return c
	}
}

func WithPosition(p BattlePosition) MoveOption {
	return func(c CardInstance) CardInstance {
		c.Position = p
		return c
	}
}

// Placed marks the card as placed on the field this turn.
func Placed() MoveOption {
	return func(c CardInstance) CardInstance {
		c.PlacedThisTurn = true
		return c
	}
}

// MoveCard removes the instance from its zone and appends it to zone to.
// Cards leaving the field lose counters and locked targets. Cards entering a
// non-field zone other than the graveyard or banished pile are face-down.
func (s Snapshot) MoveCard(instanceID string, to Zone, opts ...MoveOption) (Snapshot, error) {
	card, ok := s.Find(instanceID)
	if !ok {
		return s, fmt.Errorf("move %s: %w", instanceID, ErrCardNotFound)
	}
	if card.Location != to && !s.HasRoom(to) {
		return s, fmt.Errorf("move %s to %s: %w", instanceID, to, ErrZoneFull)
	}

	from := card.Location
	s.Zones = s.Zones.with(from, removeInstance(s.Zones.Get(from), instanceID))

	if from.OnField() && !to.OnField() {
		card = card.leaveField()
	}
	card.Location = to
	switch to {
	case ZoneGraveyard, ZoneBanished:
		card.Face = FaceUp
	case ZoneDeck, ZoneHand, ZoneExtraDeck:
		card.Face = FaceDown
	}
	for _, opt := range opts {
		card = opt(card)
	}
	s.Zones = s.Zones.with(to, appendInstance(s.Zones.Get(to), card))
	return s, nil
}

// UpdateCard replaces the instance with fn's result, keeping its position in
// the zone. fn must not change the instance id or location.
func (s Snapshot) UpdateCard(instanceID string, fn func(CardInstance) CardInstance) (Snapshot, error) {
	card, ok := s.Find(instanceID)
	if !ok {
		return s, fmt.Errorf("update %s: %w", instanceID, ErrCardNotFound)
	}
	cards := slices.Clone(s.Zones.Get(card.Location))
	for i := range cards {
		if cards[i].InstanceID == instanceID {
			updated := fn(cards[i])
			updated.InstanceID = instanceID
			updated.Location = card.Location
			cards[i] = updated
			break
		}
	}
	s.Zones = s.Zones.with(card.Location, cards)
	return s, nil
}

// Draw moves count cards from the draw end of the deck to the hand, in deck
// order. It fails without changes when the deck is too small.
func (s Snapshot) Draw(count int) (Snapshot, []CardInstance, error) {
	if count < 0 {
		return s, nil, fmt.Errorf("draw %d: %w", count, ErrInvalidCount)
	}
	if count > len(s.Zones.Deck) {
		return s, nil, fmt.Errorf("draw %d of %d: %w", count, len(s.Zones.Deck), ErrInsufficientDeck)
	}
	drawn := make([]CardInstance, count)
	for i, c := range s.Zones.Deck[:count] {
		c.Location = ZoneHand
		c.Face = FaceDown
		drawn[i] = c
	}
	s.Zones.Deck = slices.Clone(s.Zones.Deck[count:])
	s.Zones.Hand = append(slices.Clone(s.Zones.Hand), drawn...)
	return s, drawn, nil
}

// AddCounter adds n counters of counterType, never exceeding limit (0 = no cap).
func (s Snapshot) AddCounter(instanceID, counterType string, n, limit int) (Snapshot, error) {
	return s.UpdateCard(instanceID, func(c CardInstance) CardInstance {
		return c.WithCounter(counterType, c.CounterCount(counterType)+n, limit)
	})
}

// RemoveCounter removes up to n counters of counterType, flooring at zero.
func (s Snapshot) RemoveCounter(instanceID, counterType string, n int) (Snapshot, error) {
	return s.UpdateCard(instanceID, func(c CardInstance) CardInstance {
		return c.WithCounter(counterType, c.CounterCount(counterType)-n, 0)
	})
}

func (s Snapshot) WithLifePoints(p Player, lp int) Snapshot {
	s.LifePoints[p] = max(lp, 0)
	return s
}

func (s Snapshot) WithPhase(p Phase) Snapshot {
	s.Phase = p
	return s
}

func (s Snapshot) WithResult(r Result) Snapshot {
	s.Result = r
	return s
}

// MarkActivated records that a card of cardID was activated this duel.
func (s Snapshot) MarkActivated(cardID int) Snapshot {
	if s.HasActivatedCard(cardID) {
		return s
	}
	s.ActivatedCardIDs = append(slices.Clone(s.ActivatedCardIDs), cardID)
	return s
}

func (s Snapshot) PushLink(link ChainLink) Snapshot {
	s.Chain = append(slices.Clone(s.Chain), link)
	return s
}

func (s Snapshot) PopLink() Snapshot {
	if len(s.Chain) == 0 {
		return s
	}
	s.Chain = slices.Clone(s.Chain[:len(s.Chain)-1])
	if len(s.Chain) == 0 {
		s.Chain = nil
	}
	return s
}

func (s Snapshot) ClearChain() Snapshot {
	s.Chain = nil
	return s
}

// UseNormalSummon consumes one normal summon for the turn.
func (s Snapshot) UseNormalSummon() Snapshot {
	s.NormalSummonsUsed++
	return s
}

// NextTurn advances the turn counter, enters the Draw Phase and clears
// once-per-turn flags on every card.
func (s Snapshot) NextTurn() Snapshot {
	s.Turn++
	s.Phase = PhaseDraw
	s.NormalSummonsUsed = 0
	for _, z := range AllZones {
		cards := s.Zones.Get(z)
		if len(cards) == 0 {
			continue
		}
		reset := make([]CardInstance, len(cards))
		for i, c := range cards {
			reset[i] = c.resetForTurn()
		}
		s.Zones = s.Zones.with(z, reset)
	}
	return s
}

func removeInstance(cards []CardInstance, instanceID string) []CardInstance {
	out := make([]CardInstance, 0, len(cards))
	for _, c := range cards {
		if c.InstanceID != instanceID {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendInstance(cards []CardInstance, c CardInstance) []CardInstance {
	out := make([]CardInstance, 0, len(cards)+1)
	out = append(out, cards...)
	return append(out, c)
}
