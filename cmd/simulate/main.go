// Package main provides an offline balance tool: it resolves a batch of
// actions for a synthetic character against the real template content and
// prints one audit line per hand. Content designers use it to sanity-check
// difficulty and cost curves without a database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/game/action"
	"github.com/calebdrake/fifthstreet/internal/game/deck"
	"github.com/calebdrake/fifthstreet/internal/game/energy"
	"github.com/calebdrake/fifthstreet/internal/game/resolve"
	"github.com/calebdrake/fifthstreet/internal/game/skill"
)

// staticProfiles serves one synthetic character with a uniform skill level.
type staticProfiles struct {
	profile skill.Profile
	tier    string
}

func (s *staticProfiles) SkillProfile(_ context.Context, _ int64) (skill.Profile, string, error) {
	return s.profile, s.tier, nil
}

func main() {
	actionsDir := flag.String("actions", "content/actions", "path to action template YAML files")
	templateID := flag.String("template", "pickpocket", "action template to resolve")
	count := flag.Int("n", 20, "number of resolutions to attempt")
	level := flag.Int("level", 30, "skill level applied to every skill")
	tierName := flag.String("tier", "street", "character tier")
	flag.Parse()

	logger := zap.NewNop()

	registry, err := action.LoadRegistry(*actionsDir)
	if err != nil {
		log.Fatalf("loading action templates: %v", err)
	}

	tier, err := energy.TierByName(*tierName)
	if err != nil {
		log.Fatalf("resolving tier: %v", err)
	}

	profile := make(skill.Profile)
	for _, id := range []skill.ID{
		skill.Brawling, skill.Firearms, skill.Stealth, skill.Larceny,
		skill.Influence, skill.Meditation, skill.Tinkering, skill.Chemistry,
		skill.Endurance,
	} {
		profile[id] = skill.Skill{Level: *level}
	}
	profiles := &staticProfiles{profile: profile, tier: *tierName}

	ctx := context.Background()
	const characterID = 1

	manager := energy.NewManager(energy.NewMemoryStore(), logger)
	defer manager.Close()
	derived := energy.Derived{
		MaxBonus:               skill.MaxEnergyBonus(profile),
		FatigueAccrualScale:    skill.FatigueAccrualScale(profile),
		FatigueRecoveryPerHour: skill.FatigueRecoveryPerHour(profile),
	}
	if err := manager.Create(ctx, characterID, tier, derived); err != nil {
		log.Fatalf("creating character energy state: %v", err)
	}

	drawer := deck.NewLoggedDrawer(deck.NewCryptoSource(), logger)
	resolver := resolve.NewResolver(registry, profiles, manager, drawer, logger)

	successes := 0
	for i := 0; i < *count; i++ {
		result, err := resolver.ResolveAction(ctx, characterID, *templateID)
		if err != nil {
			if errors.Is(err, energy.ErrInsufficientEnergy) {
				fmt.Printf("%3d  out of energy, stopping\n", i+1)
				break
			}
			log.Fatalf("resolving action: %v", err)
		}
		verdict := "miss"
		if result.Success {
			verdict = "hit "
			successes++
		}
		fmt.Printf("%3d  %s  %-16s base=%6.1f bonus=%5.1f final=%6.1f vs %5.1f  %s  cost=%d\n",
			i+1, verdict, result.HandRank, result.BaseScore,
			result.SuitBonus+result.SecondaryBonus, result.FinalScore,
			result.Difficulty, result.Hand, result.EnergySpent,
		)
	}

	status, err := resolver.EnergyStatus(ctx, characterID)
	if err != nil {
		log.Fatalf("reading energy status: %v", err)
	}
	fmt.Printf("\n%d/%d successful; energy %d/%d, fatigue %d\n",
		successes, *count, status.Current, status.Max, status.Fatigue)
	os.Exit(0)
}
