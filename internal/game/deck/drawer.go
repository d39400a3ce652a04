package deck

import "go.uber.org/zap"

// HandDrawer produces fresh 5-card hands. The resolver draws through this
// interface so tests can substitute fixed hands.
type HandDrawer interface {
	// DrawHand returns a hand satisfying Hand.Validate().
	DrawHand() Hand
}

// Drawer wraps a Source and logger to provide logged hand drawing. Every
// draw is logged at debug level with the cards, classification, and base
// score so the anti-cheat collaborator can reconstruct any resolution.
type Drawer struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedDrawer creates a Drawer that draws with src and logs each hand
// to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedDrawer(src Source, logger *zap.Logger) *Drawer {
	return &Drawer{src: src, logger: logger}
}

// DrawHand draws a hand and logs it at debug level.
//
// Postcondition: The returned hand passes Validate() and has been logged.
func (d *Drawer) DrawHand() Hand {
	hand := Draw(d.src)
	rank := Classify(hand)
	d.logger.Debug("hand drawn",
		zap.String("hand", hand.String()),
		zap.String("rank", rank.String()),
		zap.Float64("multiplier", rank.Multiplier()),
		zap.Float64("base_score", BaseScore(hand)),
	)
	return hand
}
