package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/game/action"
	"github.com/calebdrake/fifthstreet/internal/game/deck"
	"github.com/calebdrake/fifthstreet/internal/game/energy"
	"github.com/calebdrake/fifthstreet/internal/game/skill"
)

// ErrUnknownTemplate is returned when a caller references a template ID the
// registry does not know. A caller error, not an internal fault.
var ErrUnknownTemplate = errors.New("resolve: unknown action template")

// ProfileSource supplies read-only skill profiles and tiers from the
// skill-progression subsystem. This core never mutates skill levels.
type ProfileSource interface {
	// SkillProfile returns the character's profile and tier name, or a
	// not-found error which the resolver propagates unchanged.
	SkillProfile(ctx context.Context, characterID int64) (skill.Profile, string, error)
}

// Resolver wires the template registry, skill profiles, energy manager, and
// hand drawer into the single ResolveAction contract.
type Resolver struct {
	registry *action.Registry
	profiles ProfileSource
	energy   *energy.Manager
	drawer   deck.HandDrawer
	logger   *zap.Logger
	now      func() time.Time
}

// NewResolver creates a Resolver.
//
// Precondition: all dependencies must be non-nil.
func NewResolver(registry *action.Registry, profiles ProfileSource, mgr *energy.Manager, drawer deck.HandDrawer, logger *zap.Logger) *Resolver {
	if registry == nil || profiles == nil || mgr == nil || drawer == nil || logger == nil {
		panic("resolve: NewResolver: all dependencies must be non-nil")
	}
	return &Resolver{
		registry: registry,
		profiles: profiles,
		energy:   mgr,
		drawer:   drawer,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// deriveEnergy bundles the skill-driven resource parameters for a profile.
func deriveEnergy(p skill.Profile) energy.Derived {
	return energy.Derived{
		MaxBonus:               skill.MaxEnergyBonus(p),
		FatigueAccrualScale:    skill.FatigueAccrualScale(p),
		FatigueRecoveryPerHour: skill.FatigueRecoveryPerHour(p),
	}
}

// ResolveAction resolves one action for a character: it computes the
// skill-adjusted energy cost, atomically debits it, draws and scores a
// hand, applies suit bonuses, and compares the final score to the
// template's difficulty.
//
// An insufficient energy balance fails before any card is drawn and
// changes no state. Once the debit commits it is the cost of attempting:
// energy and fatigue are not rolled back when the action itself fails.
//
// Postcondition: Returns an immutable Result, or one of: an error matching
// ErrUnknownTemplate, an error matching energy.ErrInsufficientEnergy, or an
// upstream not-found error propagated unchanged.
func (r *Resolver) ResolveAction(ctx context.Context, characterID int64, templateID string) (*Result, error) {
	tmpl, ok := r.registry.Lookup(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}

	profile, tierName, err := r.profiles.SkillProfile(ctx, characterID)
	if err != nil {
		return nil, err
	}

	cost := skill.AdjustedCost(tmpl.EnergyCost, tmpl.CostReducers, profile)
	receipt, err := r.energy.Spend(ctx, characterID, cost, deriveEnergy(profile))
	if err != nil {
		return nil, err
	}

	hand := r.drawer.DrawHand()
	rank := deck.Classify(hand)
	base := deck.BaseScore(hand)

	primary := skill.SuitBonus(hand, profile, tmpl.Category)
	secondary := 0.0
	if tmpl.HasSecondary() {
		secondary = skill.SuitBonus(hand, profile, tmpl.SecondaryCategory)
	}

	final := base + primary + secondary
	success := final >= tmpl.Difficulty

	result := &Result{
		ID:              uuid.New(),
		CharacterID:     characterID,
		TemplateID:      tmpl.ID,
		TemplateVersion: tmpl.Version,
		Hand:            hand,
		HandRank:        rank,
		Multiplier:      rank.Multiplier(),
		BaseScore:       base,
		SuitBonus:       primary,
		SecondaryBonus:  secondary,
		FinalScore:      final,
		Difficulty:      tmpl.Difficulty,
		Success:         success,
		EnergySpent:     receipt.Cost,
		FatigueDelta:    receipt.FatigueDelta,
		ResolvedAt:      r.now(),
	}

	r.logger.Info("action resolved",
		zap.Int64("character_id", characterID),
		zap.String("template_id", tmpl.ID),
		zap.String("tier", tierName),
		zap.String("hand", hand.String()),
		zap.String("rank", rank.String()),
		zap.Float64("final_score", final),
		zap.Float64("difficulty", tmpl.Difficulty),
		zap.Bool("success", success),
		zap.Int("energy_spent", receipt.Cost),
	)
	return result, nil
}

// EnergyStatus returns a read-only energy snapshot for UI display,
// triggering lazy regeneration before the read.
func (r *Resolver) EnergyStatus(ctx context.Context, characterID int64) (energy.Snapshot, error) {
	profile, _, err := r.profiles.SkillProfile(ctx, characterID)
	if err != nil {
		return energy.Snapshot{}, err
	}
	return r.energy.Status(ctx, characterID, deriveEnergy(profile))
}
