package energy

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RegenTick is the discrete unit of elapsed time over which a fractional
// slice of hourly regeneration is accrued.
const RegenTick = 12 * time.Minute

// ticksPerHour is the number of regen ticks in one hour.
const ticksPerHour = 5

// MaxFatigue is the fatigue ceiling.
const MaxFatigue = 100.0

// fatiguePerEnergy is the fatigue gained per point of energy spent, before
// the endurance scale is applied.
const fatiguePerEnergy = 0.2

// ErrInsufficientEnergy is returned by Spend when the character cannot
// afford the requested amount. No state changes in that case.
var ErrInsufficientEnergy = errors.New("energy: insufficient energy")

// ErrUnknownCharacter is returned (wrapped) by Store implementations when
// no energy state exists for a character. The manager propagates it
// unchanged; this core has no authority to create or repair character data.
var ErrUnknownCharacter = errors.New("energy: unknown character")

// InsufficientEnergyError carries the amounts behind an ErrInsufficientEnergy
// failure so callers can prompt the user or wait.
type InsufficientEnergyError struct {
	CharacterID int64
	Needed      int
	Available   int
}

// Error implements the error interface.
func (e *InsufficientEnergyError) Error() string {
	return fmt.Sprintf("energy: character %d needs %d energy, has %d", e.CharacterID, e.Needed, e.Available)
}

// Is reports a match against ErrInsufficientEnergy.
func (e *InsufficientEnergyError) Is(target error) bool {
	return target == ErrInsufficientEnergy
}

// Derived bundles the skill-driven parameters the resource manager needs
// but does not compute itself. Callers derive it from the character's skill
// profile; the manager caches the last value supplied for driver ticks.
type Derived struct {
	// MaxBonus is added to the tier's base energy; capped at 25 upstream.
	MaxBonus int
	// FatigueAccrualScale multiplies fatigue gained per energy spent, in [0.5, 1].
	FatigueAccrualScale float64
	// FatigueRecoveryPerHour is the passive fatigue recovery rate, in [10, 20].
	FatigueRecoveryPerHour float64
}

// DefaultDerived is used when no profile has been supplied yet.
var DefaultDerived = Derived{MaxBonus: 0, FatigueAccrualScale: 1, FatigueRecoveryPerHour: 10}

// State is one character's energy record. All mutation goes through the
// per-character actor inside Manager; State methods themselves assume the
// caller has exclusive access.
//
// Invariant: 0 <= Current <= Max(d) and 0 <= Fatigue <= 100 after every
// mutation.
type State struct {
	CharacterID int64
	Tier        Tier
	Current     int
	Fatigue     float64
	// LastRegenAt advances only by whole processed ticks, preserving
	// partial-tick time exactly across repeated Regenerate calls.
	LastRegenAt time.Time
	// RegenRemainder carries the fractional energy accrued but not yet
	// moved into Current.
	RegenRemainder float64
	// LastFatigueAt is the fatigue-recovery timestamp. Fatigue recovery and
	// energy regeneration are independent passive processes with separate
	// clocks.
	LastFatigueAt time.Time
}

// NewState returns a fresh character state: full energy, zero fatigue.
//
// Precondition: characterID > 0; tier must be one of the defined tiers.
func NewState(characterID int64, tier Tier, d Derived, now time.Time) *State {
	return &State{
		CharacterID:   characterID,
		Tier:          tier,
		Current:       tier.BaseEnergy + d.MaxBonus,
		Fatigue:       0,
		LastRegenAt:   now,
		LastFatigueAt: now,
	}
}

// Max returns the energy pool ceiling: tier base plus the skill bonus.
func (s *State) Max(d Derived) int {
	return s.Tier.BaseEnergy + d.MaxBonus
}

// fatigueMultiplier scales regeneration by current fatigue, linearly from
// 1.0 at fatigue 0 down to 0.5 at fatigue 100.
func (s *State) fatigueMultiplier() float64 {
	return 1.0 - (s.Fatigue/MaxFatigue)*0.5
}

// Regenerate processes the whole 12-minute ticks elapsed since LastRegenAt,
// accruing (RegenPerHour/5) × fatigueMultiplier per tick into the
// fractional remainder and moving whole units into Current, clamped to the
// max. Whole units beyond the cap are discarded, not banked. When Current
// already exceeds Max(d) the call adds nothing and removes nothing.
// LastRegenAt
// advances only by the processed ticks, so repeated calls at the same now
// are idempotent and partial-tick time is never lost.
//
// Postcondition: Returns the whole units added to Current (>= 0);
// 0 <= Current <= Max(d).
func (s *State) Regenerate(now time.Time, d Derived) int {
	ticks := int(now.Sub(s.LastRegenAt) / RegenTick)
	if ticks <= 0 {
		return 0
	}

	perTick := s.Tier.RegenPerHour / ticksPerHour * s.fatigueMultiplier()
	s.RegenRemainder += float64(ticks) * perTick
	s.LastRegenAt = s.LastRegenAt.Add(time.Duration(ticks) * RegenTick)

	whole := int(math.Floor(s.RegenRemainder))
	if whole <= 0 {
		return 0
	}
	s.RegenRemainder -= float64(whole)

	max := s.Max(d)
	added := whole
	if s.Current+added > max {
		added = max - s.Current
		if added < 0 {
			// Current above the supplied ceiling means the caller passed
			// stale skill parameters. Regeneration only ever credits; the
			// mismatch surfaces through CheckInvariants, never as a debit.
			added = 0
		}
	}
	s.Current += added
	return added
}

// Spend atomically checks Current >= amount and decrements it, accruing
// fatigue of amount × 0.2 × FatigueAccrualScale (capped at 100). On an
// insufficient balance it returns an InsufficientEnergyError and changes
// nothing.
//
// Precondition: amount > 0. The caller must hold exclusive access; the
// manager guarantees this by funnelling all operations for a character
// through its actor.
// Postcondition: Returns the fatigue actually added, or an error with zero
// state change.
func (s *State) Spend(amount int, d Derived) (fatigueDelta float64, err error) {
	if amount <= 0 {
		panic(fmt.Sprintf("energy: Spend called with amount %d <= 0", amount))
	}
	if s.Current < amount {
		return 0, &InsufficientEnergyError{
			CharacterID: s.CharacterID,
			Needed:      amount,
			Available:   s.Current,
		}
	}
	s.Current -= amount

	before := s.Fatigue
	s.Fatigue += float64(amount) * fatiguePerEnergy * d.FatigueAccrualScale
	if s.Fatigue > MaxFatigue {
		s.Fatigue = MaxFatigue
	}
	return s.Fatigue - before, nil
}

// RecoverFatigue passively reduces fatigue in proportion to the hours
// elapsed since LastFatigueAt, floored at 0. Recovery is continuous, not
// tick-based, and independent of Regenerate.
//
// Postcondition: Returns the fatigue removed (>= 0); 0 <= Fatigue <= 100.
func (s *State) RecoverFatigue(now time.Time, d Derived) float64 {
	elapsed := now.Sub(s.LastFatigueAt)
	if elapsed <= 0 {
		return 0
	}
	s.LastFatigueAt = now

	recovered := elapsed.Hours() * d.FatigueRecoveryPerHour
	if recovered > s.Fatigue {
		recovered = s.Fatigue
	}
	s.Fatigue -= recovered
	return recovered
}

// CheckInvariants verifies the energy and fatigue bounds. A violation is a
// fatal internal bug: given correct per-character serialization it must be
// unreachable.
//
// Postcondition: Returns nil iff 0 <= Current <= Max(d) and 0 <= Fatigue <= 100.
func (s *State) CheckInvariants(d Derived) error {
	if s.Current < 0 || s.Current > s.Max(d) {
		return fmt.Errorf("energy: character %d current %d outside [0, %d]", s.CharacterID, s.Current, s.Max(d))
	}
	if s.Fatigue < 0 || s.Fatigue > MaxFatigue {
		return fmt.Errorf("energy: character %d fatigue %.3f outside [0, %v]", s.CharacterID, s.Fatigue, MaxFatigue)
	}
	return nil
}

// Snapshot is a read-only view of a character's energy for UI display.
// Real-valued fields are rounded to integers for external reads.
type Snapshot struct {
	CharacterID  int64
	Current      int
	Max          int
	Fatigue      int
	RegenPerHour float64
}

// snapshot builds the external view, defensively clamping on read.
func (s *State) snapshot(d Derived) Snapshot {
	current := s.Current
	max := s.Max(d)
	if current < 0 {
		current = 0
	}
	if current > max {
		current = max
	}
	return Snapshot{
		CharacterID:  s.CharacterID,
		Current:      current,
		Max:          max,
		Fatigue:      int(math.Round(s.Fatigue)),
		RegenPerHour: s.Tier.RegenPerHour,
	}
}

// Clone returns a copy of the state for persistence outside the actor.
func (s *State) Clone() *State {
	cp := *s
	return &cp
}
