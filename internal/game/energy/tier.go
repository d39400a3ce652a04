// Package energy owns each character's energy pool and fatigue level:
// fractional-tick regeneration, fatigue accrual and recovery, and atomic
// spend operations serialized through a per-character actor.
package energy

import "fmt"

// Tier defines the base energy pool and regeneration rate for a character
// tier. Tier progression itself belongs to an external collaborator; this
// core only reads the tier attached to a character.
type Tier struct {
	Name         string
	BaseEnergy   int
	RegenPerHour float64
}

// The five character tiers.
var (
	TierStreet  = Tier{Name: "street", BaseEnergy: 50, RegenPerHour: 10}
	TierHustler = Tier{Name: "hustler", BaseEnergy: 60, RegenPerHour: 12}
	TierSoldier = Tier{Name: "soldier", BaseEnergy: 75, RegenPerHour: 15}
	TierCapo    = Tier{Name: "capo", BaseEnergy: 90, RegenPerHour: 18}
	TierKingpin = Tier{Name: "kingpin", BaseEnergy: 110, RegenPerHour: 20}
)

var tiersByName = map[string]Tier{
	TierStreet.Name:  TierStreet,
	TierHustler.Name: TierHustler,
	TierSoldier.Name: TierSoldier,
	TierCapo.Name:    TierCapo,
	TierKingpin.Name: TierKingpin,
}

// TierByName resolves a tier by its persisted name.
//
// Postcondition: Returns the tier, or an error for an unknown name.
func TierByName(name string) (Tier, error) {
	t, ok := tiersByName[name]
	if !ok {
		return Tier{}, fmt.Errorf("energy: unknown tier %q", name)
	}
	return t, nil
}
