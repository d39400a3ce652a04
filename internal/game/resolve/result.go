// Package resolve orchestrates action resolution: reserve energy, draw and
// score a hand, apply suit bonuses, and compare the final score to the
// action's difficulty. It is the sole entry point for the combat, crime,
// crafting, and social-action services; callers never construct hands or
// energy states directly.
package resolve

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebdrake/fifthstreet/internal/game/deck"
)

// Result is the immutable, auditable record of one resolution. Ownership
// belongs to the caller; the core keeps no history.
type Result struct {
	ID              uuid.UUID
	CharacterID     int64
	TemplateID      string
	TemplateVersion int

	Hand       deck.Hand
	HandRank   deck.HandRank
	Multiplier float64
	BaseScore  float64
	// SuitBonus is the primary-category bonus; SecondaryBonus is zero when
	// the template defines no secondary category.
	SuitBonus      float64
	SecondaryBonus float64
	FinalScore     float64

	Difficulty float64
	Success    bool

	EnergySpent  int
	FatigueDelta float64
	ResolvedAt   time.Time
}
