package skill

import (
	"math"

	"github.com/calebdrake/fifthstreet/internal/game/deck"
)

// SuitBonus computes the additive score bonus a profile earns from the
// cards of the category's suit: the sum of matching card ranks scaled by
// level/50. A card contributes to at most one category, so bonuses for
// distinct categories never double-count.
//
// Postcondition: Returns >= 0; returns 0 when no card matches the suit or
// the category is untrained.
func SuitBonus(h deck.Hand, p Profile, c Category) float64 {
	level := CategoryLevel(p, c)
	if level <= 0 {
		return 0
	}
	return float64(level) / 50.0 * float64(h.SuitRankSum(c.Suit()))
}

// CostReducer configures one skill's energy cost reduction for an action:
// the reduction grows linearly with level (PerLevel per level) up to Cap.
type CostReducer struct {
	Skill    ID      `yaml:"skill"`
	PerLevel float64 `yaml:"per_level"`
	Cap      float64 `yaml:"cap"`
}

// Reduction returns the fractional cost reduction the profile earns from
// this reducer.
//
// Postcondition: Returns a value in [0, r.Cap].
func (r CostReducer) Reduction(p Profile) float64 {
	red := float64(p.Level(r.Skill)) * r.PerLevel
	if red > r.Cap {
		red = r.Cap
	}
	if red < 0 {
		return 0
	}
	return red
}

// MaxTotalCostReduction caps the summed reductions from all qualifying
// skills on one action.
const MaxTotalCostReduction = 0.5

// AdjustedCost computes the energy cost of an action after skill-driven
// reductions: ceil(base × (1 − min(0.5, Σ reductions))), never below 1 for
// a positive base cost.
//
// Precondition: base > 0.
// Postcondition: 1 <= result <= base.
func AdjustedCost(base int, reducers []CostReducer, p Profile) int {
	total := 0.0
	for _, r := range reducers {
		total += r.Reduction(p)
	}
	if total > MaxTotalCostReduction {
		total = MaxTotalCostReduction
	}
	cost := int(math.Ceil(float64(base) * (1 - total)))
	if cost < 1 {
		cost = 1
	}
	return cost
}

// Max-energy bonus steps. Endurance and meditation each contribute a
// stepped bonus, summed and capped globally at 25.
const (
	maxEnergyBonusCap   = 25
	energyBonusStep     = 10
	enduranceStepBonus  = 2
	enduranceBonusCap   = 15
	meditationStepBonus = 2
	meditationBonusCap  = 10
)

// MaxEnergyBonus computes the bonus added to the tier's base energy to form
// the character's energy pool ceiling.
//
// Postcondition: Returns a value in [0, 25].
func MaxEnergyBonus(p Profile) int {
	endurance := (p.Level(Endurance) / energyBonusStep) * enduranceStepBonus
	if endurance > enduranceBonusCap {
		endurance = enduranceBonusCap
	}
	meditation := (p.Level(Meditation) / energyBonusStep) * meditationStepBonus
	if meditation > meditationBonusCap {
		meditation = meditationBonusCap
	}
	bonus := endurance + meditation
	if bonus > maxEnergyBonusCap {
		bonus = maxEnergyBonusCap
	}
	return bonus
}

// FatigueAccrualScale returns the multiplier applied to fatigue gained per
// point of energy spent. Endurance training reduces accrual by 0.5% per
// level, to at most half.
//
// Postcondition: Returns a value in [0.5, 1.0].
func FatigueAccrualScale(p Profile) float64 {
	reduction := float64(p.Level(Endurance)) * 0.005
	if reduction > 0.5 {
		reduction = 0.5
	}
	return 1 - reduction
}

// FatigueRecoveryPerHour returns the passive fatigue recovery rate: a base
// of 10 points per hour plus up to +10 from meditation.
//
// Postcondition: Returns a value in [10, 20].
func FatigueRecoveryPerHour(p Profile) float64 {
	bonus := float64(p.Level(Meditation)) * 0.1
	if bonus > 10 {
		bonus = 10
	}
	return 10 + bonus
}
