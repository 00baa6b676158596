package card

import (
	"fmt"
	"sort"
)

type Kind int

const (
	KindMonster Kind = iota
	KindSpell
	KindTrap
)

func (k Kind) String() string {
	switch k {
	case KindMonster:
		return "Monster"
	case KindSpell:
		return "Spell"
	case KindTrap:
		return "Trap"
	default:
		return "Unknown"
	}
}

// ParseKind accepts the lower-case names used in card and deck files.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "monster":
		return KindMonster, nil
	case "spell":
		return KindSpell, nil
	case "trap":
		return KindTrap, nil
	}
	return 0, fmt.Errorf("unknown card kind %q", s)
}

// Data is the static master data of a card.
type Data struct {
	ID      int
	Name    string
	Kind    Kind
	Subtype string // "normal", "quick-play", "continuous", "field", "effect", ...
	Level   int
	ATK     int
	DEF     int
	Text    string
}

func (d Data) IsMonster() bool { return d.Kind == KindMonster }

func (d Data) IsSpellOrTrap() bool { return d.Kind == KindSpell || d.Kind == KindTrap }

// TributesRequired returns how many monsters must be tributed to normal
// summon or set this card.
func (d Data) TributesRequired() int {
	switch {
	case d.Level >= 7:
		return 2
	case d.Level >= 5:
		return 1
	default:
		return 0
	}
}

// Provider looks up card master data.
type Provider interface {
	Lookup(id int) (Data, bool)
}

// Catalog is an in-memory Provider.
type Catalog struct {
	cards map[int]Data
}

func NewCatalog(cards ...Data) *Catalog {
	c := &Catalog{cards: make(map[int]Data, len(cards))}
	for _, d := range cards {
		c.cards[d.ID] = d
	}
	return c
}

// Add registers d, failing if the id is taken by a different card.
func (c *Catalog) Add(d Data) error {
	if existing, ok := c.cards[d.ID]; ok && existing != d {
		return fmt.Errorf("card %d already registered as %q", d.ID, existing.Name)
	}
	c.cards[d.ID] = d
	return nil
}

func (c *Catalog) Lookup(id int) (Data, bool) {
	d, ok := c.cards[id]
	return d, ok
}

// ByName finds a card by its exact name.
func (c *Catalog) ByName(name string) (Data, bool) {
	for _, d := range c.cards {
		if d.Name == name {
			return d, true
		}
	}
	return Data{}, false
}

// All returns every card sorted by name.
func (c *Catalog) All() []Data {
	out := make([]Data, 0, len(c.cards))
	for _, d := range c.cards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Name returns the card's name, or its id when unknown.
func Name(p Provider, id int) string {
	if p != nil {
		if d, ok := p.Lookup(id); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}
