// Package library holds hand-authored card definitions.
package library

import (
	"fmt"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/chain"
	"github.com/peterkuimelis/chainduel/internal/rule"
)

// Card ids.
const (
	PotOfGreedID           = 55144522
	UpstartGoblinID        = 70368879
	GracefulCharityID      = 79571449
	OokaziID               = 19523799
	MysticalSpaceTyphoonID = 5318639
	JarOfGreedID           = 83968380
	RoyalMagicalLibraryID  = 70791313
	ChickenGameID          = 67616300

	ExodiaID         = 33396948
	LeftArmID        = 7902349
	RightArmID       = 70903634
	LeftLegID        = 44519536
	RightLegID       = 8124921
	CelticGuardianID = 91152256
	MysticalElfID    = 15025844
	SummonedSkullID  = 70781052
	DarkMagicianID   = 46986414
)

// ForbiddenPieces are the five cards that win the duel together in hand.
var ForbiddenPieces = []int{ExodiaID, LeftArmID, RightArmID, LeftLegID, RightLegID}

// SpellCounter is the counter type Royal Magical Library accumulates.
const SpellCounter = "spell"

// Definition bundles everything one card contributes to a duel.
type Definition struct {
	Data    card.Data
	Actions []chain.Action
	Rules   []rule.AdditionalRule
}

// Standard returns the built-in card pool. perm answers damage permissions
// for cards that inflict damage; pass the duel's rule registry.
func Standard(perm rule.Permitter) []Definition {
	return []Definition{
		PotOfGreed(),
		UpstartGoblin(),
		GracefulCharity(),
		Ookazi(perm),
		MysticalSpaceTyphoon(),
		JarOfGreed(),
		RoyalMagicalLibrary(),
		ChickenGame(),
		vanilla(ExodiaID, "Exodia the Forbidden One", 3, 1000, 1000),
		vanilla(LeftArmID, "Left Arm of the Forbidden One", 1, 200, 300),
		vanilla(RightArmID, "Right Arm of the Forbidden One", 1, 200, 300),
		vanilla(LeftLegID, "Left Leg of the Forbidden One", 1, 200, 300),
		vanilla(RightLegID, "Right Leg of the Forbidden One", 1, 200, 300),
		vanilla(CelticGuardianID, "Celtic Guardian", 4, 1400, 1200),
		vanilla(MysticalElfID, "Mystical Elf", 4, 800, 2000),
		vanilla(SummonedSkullID, "Summoned Skull", 6, 2500, 1200),
		vanilla(DarkMagicianID, "Dark Magician", 7, 2500, 2100),
	}
}

// Install adds defs to a duel's catalog and registries.
func Install(defs []Definition, cat *card.Catalog, actions *chain.Registry, rules *rule.Registry) error {
	for _, d := range defs {
		if err := cat.Add(d.Data); err != nil {
			return err
		}
		for _, a := range d.Actions {
			if err := actions.Register(a); err != nil {
				return fmt.Errorf("install %s: %w", d.Data.Name, err)
			}
		}
		for _, r := range d.Rules {
			if err := rules.Register(r); err != nil {
				return fmt.Errorf("install %s: %w", d.Data.Name, err)
			}
		}
	}
	return nil
}

func vanilla(id int, name string, level, atk, def int) Definition {
	return Definition{Data: card.Data{
		ID:      id,
		Name:    name,
		Kind:    card.KindMonster,
		Subtype: "normal",
		Level:   level,
		ATK:     atk,
		DEF:     def,
	}}
}
