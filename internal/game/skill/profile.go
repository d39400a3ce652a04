// Package skill maps character skill levels to suit categories and computes
// the skill-driven modifiers applied on top of a drawn hand: suit bonuses,
// energy cost reductions, max-energy bonuses, and fatigue parameters.
//
// Skill leveling itself belongs to the skill-progression subsystem; profiles
// are read-only input here.
package skill

import "fmt"

// ID identifies a skill.
type ID string

// The skill identifiers the resolution core reads. Content may define more;
// unknown skills are simply never consulted.
const (
	Brawling   ID = "brawling"
	Firearms   ID = "firearms"
	Stealth    ID = "stealth"
	Larceny    ID = "larceny"
	Influence  ID = "influence"
	Meditation ID = "meditation"
	Tinkering  ID = "tinkering"
	Chemistry  ID = "chemistry"
	Endurance  ID = "endurance"
)

// Skill level bounds.
const (
	MinLevel = 1
	MaxLevel = 100
)

// Skill holds one skill's level and accumulated experience.
type Skill struct {
	Level      int
	Experience int64
}

// Profile is a character's skill mapping. The zero value is a valid empty
// profile (every lookup yields level 0).
type Profile map[ID]Skill

// Level returns the level for id, or 0 when the skill is absent.
func (p Profile) Level(id ID) int {
	return p[id].Level
}

// Validate checks that every present skill level is within [1, 100].
//
// Postcondition: Returns nil iff all levels are in range.
func (p Profile) Validate() error {
	for id, s := range p {
		if s.Level < MinLevel || s.Level > MaxLevel {
			return fmt.Errorf("skill: %s level %d outside [%d, %d]", id, s.Level, MinLevel, MaxLevel)
		}
	}
	return nil
}
