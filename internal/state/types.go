package state

// --- Enums ---

type Player int

const (
	PlayerSelf Player = iota
	PlayerOpponent
)

func (p Player) Opponent() Player {
	if p == PlayerSelf {
		return PlayerOpponent
	}
	return PlayerSelf
}

func (p Player) String() string {
	if p == PlayerSelf {
		return "self"
	}
	return "opponent"
}

type Phase int

const (
	PhaseDraw Phase = iota
	PhaseStandby
	PhaseMain1
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "Draw Phase"
	case PhaseStandby:
		return "Standby Phase"
	case PhaseMain1:
		return "Main Phase 1"
	case PhaseEnd:
		return "End Phase"
	default:
		return "None"
	}
}

// Next returns the phase that follows p. newTurn is true when the duel wraps
// from the End Phase into the next turn's Draw Phase.
func (p Phase) Next() (next Phase, newTurn bool) {
	switch p {
	case PhaseDraw:
		return PhaseStandby, false
	case PhaseStandby:
		return PhaseMain1, false
	case PhaseMain1:
		return PhaseEnd, false
	default:
		return PhaseDraw, true
	}
}

type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneExtraDeck
	ZoneMonster
	ZoneSpellTrap
	ZoneField
	ZoneGraveyard
	ZoneBanished
)

// AllZones lists zones in scan order.
var AllZones = []Zone{
	ZoneDeck, ZoneHand, ZoneExtraDeck, ZoneMonster,
	ZoneSpellTrap, ZoneField, ZoneGraveyard, ZoneBanished,
}

func (z Zone) String() string {
	switch z {
	case ZoneDeck:
		return "deck"
	case ZoneHand:
		return "hand"
	case ZoneExtraDeck:
		return "extra deck"
	case ZoneMonster:
		return "monster zone"
	case ZoneSpellTrap:
		return "spell/trap zone"
	case ZoneField:
		return "field zone"
	case ZoneGraveyard:
		return "graveyard"
	case ZoneBanished:
		return "banished"
	default:
		return "unknown"
	}
}

// OnField reports whether cards in z are on the field.
func (z Zone) OnField() bool {
	return z == ZoneMonster || z == ZoneSpellTrap || z == ZoneField
}

// Capacity returns the maximum number of cards z may hold, or 0 for unbounded.
func (z Zone) Capacity() int {
	switch z {
	case ZoneMonster:
		return MaxMonsterZones
	case ZoneSpellTrap:
		return MaxSpellTrapZones
	case ZoneField:
		return MaxFieldZones
	default:
		return 0
	}
}

type Face int

const (
	FaceDown Face = iota
	FaceUp
)

func (f Face) String() string {
	if f == FaceUp {
		return "face-up"
	}
	return "face-down"
}

type BattlePosition int

const (
	PositionNone BattlePosition = iota
	PositionAttack
	PositionDefense
)

func (p BattlePosition) String() string {
	switch p {
	case PositionAttack:
		return "ATK"
	case PositionDefense:
		return "DEF"
	default:
		return ""
	}
}

// --- Constants ---

const (
	MaxMonsterZones    = 5
	MaxSpellTrapZones  = 5
	MaxFieldZones      = 1
	InitialHandSize    = 5
	StartingLifePoints = 8000
)
