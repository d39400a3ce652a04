package skill

import (
	"fmt"

	"github.com/calebdrake/fifthstreet/internal/game/deck"
)

// Category is one of the four suit categories linking card suits to skill
// domains: Combat/Clubs, Cunning/Spades, Spirit/Hearts, Craft/Diamonds.
type Category string

const (
	Combat  Category = "combat"
	Cunning Category = "cunning"
	Spirit  Category = "spirit"
	Craft   Category = "craft"
)

// Categories lists all four suit categories.
var Categories = []Category{Combat, Cunning, Spirit, Craft}

// Valid reports whether c is one of the four defined categories.
func (c Category) Valid() bool {
	switch c {
	case Combat, Cunning, Spirit, Craft:
		return true
	default:
		return false
	}
}

// Suit returns the card suit mapped to the category.
//
// Precondition: c must be a valid Category.
func (c Category) Suit() deck.Suit {
	switch c {
	case Combat:
		return deck.Clubs
	case Cunning:
		return deck.Spades
	case Spirit:
		return deck.Hearts
	case Craft:
		return deck.Diamonds
	default:
		panic(fmt.Sprintf("skill: Suit called on invalid category %q", string(c)))
	}
}

// categorySkills maps each category to its associated skills. Endurance is
// deliberately absent: it only shapes the energy pool, never suit bonuses.
var categorySkills = map[Category][]ID{
	Combat:  {Brawling, Firearms},
	Cunning: {Stealth, Larceny},
	Spirit:  {Influence, Meditation},
	Craft:   {Tinkering, Chemistry},
}

// Skills returns the skills associated with the category.
func (c Category) Skills() []ID {
	return categorySkills[c]
}

// CategoryLevel returns the level the profile contributes to the category.
// When a category has several associated skills the highest trained level
// counts; a character who mastered firearms gains the full Combat bonus
// regardless of their brawling.
func CategoryLevel(p Profile, c Category) int {
	best := 0
	for _, id := range categorySkills[c] {
		if lvl := p.Level(id); lvl > best {
			best = lvl
		}
	}
	return best
}
