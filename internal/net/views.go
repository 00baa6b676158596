package net

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/log"
	"github.com/peterkuimelis/chainduel/internal/state"
)

// BuildStateView creates the client view of a snapshot.
func BuildStateView(s state.Snapshot, cards card.Provider) *StateView {
	sv := &StateView{
		Turn:       s.Turn,
		Phase:      s.Phase.String(),
		LP:         s.LP(state.PlayerSelf),
		OpponentLP: s.LP(state.PlayerOpponent),
		Hand:       cardViews(s.Zones.Hand, cards),
		Monsters:   cardViews(s.Zones.Monster, cards),
		SpellTraps: cardViews(s.Zones.SpellTrap, cards),
		Graveyard:  len(s.Zones.Graveyard),
		Deck:       len(s.Zones.Deck),
		GameOver:   s.IsOver(),
	}
	if len(s.Zones.Field) > 0 {
		fv := CardViewOf(0, s.Zones.Field[0], cards)
		sv.Field = &fv
	}
	for _, l := range s.Chain {
		sv.Chain = append(sv.Chain, LinkView{
			Index:      l.Index,
			Card:       card.Name(cards, l.CardID),
			Effect:     l.EffectID,
			SpellSpeed: l.SpellSpeed,
		})
	}
	return sv
}

func cardViews(cs []state.CardInstance, cards card.Provider) []CardView {
	views := make([]CardView, len(cs))
	for i, c := range cs {
		views[i] = CardViewOf(i, c, cards)
	}
	return views
}

// CardViewOf describes one card instance. Only monsters carry stats.
func CardViewOf(index int, c state.CardInstance, cards card.Provider) CardView {
	cv := CardView{
		Index:    index,
		ID:       c.InstanceID,
		Name:     card.Name(cards, c.CardID),
		FaceDown: c.Location.OnField() && c.Face == state.FaceDown,
	}
	if d, ok := lookup(cards, c.CardID); ok && d.IsMonster() {
		cv.ATK, cv.DEF = d.ATK, d.DEF
		if c.Location == state.ZoneMonster {
			cv.Position = c.Position.String()
		}
	}
	for _, ctr := range c.Counters {
		if cv.Counters == nil {
			cv.Counters = make(map[string]int)
		}
		cv.Counters[ctr.Type] += ctr.Count
	}
	return cv
}

func lookup(cards card.Provider, id int) (card.Data, bool) {
	if cards == nil {
		return card.Data{}, false
	}
	return cards.Lookup(id)
}

// ActionViews numbers the candidates in order.
func ActionViews(cs []chain.Candidate, cards card.Provider) []ActionView {
	views := make([]ActionView, len(cs))
	for i, c := range cs {
		views[i] = ActionView{
			Index:  i,
			Card:   c.Instance.InstanceID,
			Effect: c.Action.EffectID,
			Desc:   describeAction(c, cards),
		}
	}
	return views
}

func describeAction(c chain.Candidate, cards card.Provider) string {
	name := card.Name(cards, c.Instance.CardID)
	if c.Action.Subtype.IsCardActivation() {
		return fmt.Sprintf("Activate %s (%s)", name, c.Action.Subtype)
	}
	return fmt.Sprintf("Use %s: %s", name, c.Action.EffectID)
}

// EventViewOf converts a journal entry.
func EventViewOf(e log.Entry) EventView {
	return EventView{
		Seq:     e.Seq,
		Turn:    e.Turn,
		Phase:   e.Phase,
		Kind:    string(e.Kind),
		Type:    string(e.Event),
		Card:    e.Card,
		Details: e.Details,
	}
}
