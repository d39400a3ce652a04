// Package main provides the energy daemon: it keeps every character's
// energy pool regenerating on schedule, writes mutated states back to
// PostgreSQL, and logs the energy transaction stream for exploit detection.
//
// Action resolution itself is embedded as a library by the combat, crime,
// crafting, and social services; this daemon only owns the scheduled work.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/config"
	"github.com/calebdrake/fifthstreet/internal/game/action"
	"github.com/calebdrake/fifthstreet/internal/game/energy"
	"github.com/calebdrake/fifthstreet/internal/game/skill"
	"github.com/calebdrake/fifthstreet/internal/observability"
	"github.com/calebdrake/fifthstreet/internal/server"
	"github.com/calebdrake/fifthstreet/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Templates are loaded at startup so content errors surface before the
	// daemon reports healthy, even though only the resolver embeds them.
	registry, err := action.LoadRegistry(cfg.Game.ActionsDir)
	if err != nil {
		logger.Fatal("loading action templates", zap.Error(err))
	}
	logger.Info("action templates loaded", zap.Int("count", registry.Len()))

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	charRepo := postgres.NewCharacterRepository(pool.DB())
	energyRepo := postgres.NewEnergyRepository(pool.DB())

	manager := energy.NewManager(energyRepo, logger)
	defer manager.Close()

	// Attach every known character with their real skill-derived parameters
	// so the driver regenerates idle pools against the correct ceilings and
	// rates. The manager caches these for its ticks.
	ids, err := charRepo.ListIDs(ctx)
	if err != nil {
		logger.Fatal("listing characters", zap.Error(err))
	}
	attached := 0
	for _, id := range ids {
		profile, _, err := charRepo.SkillProfile(ctx, id)
		if err != nil {
			logger.Warn("loading skill profile", zap.Int64("character_id", id), zap.Error(err))
			continue
		}
		d := energy.Derived{
			MaxBonus:               skill.MaxEnergyBonus(profile),
			FatigueAccrualScale:    skill.FatigueAccrualScale(profile),
			FatigueRecoveryPerHour: skill.FatigueRecoveryPerHour(profile),
		}
		if _, err := manager.Status(ctx, id, d); err != nil {
			logger.Warn("attaching character", zap.Int64("character_id", id), zap.Error(err))
			continue
		}
		attached++
	}
	logger.Info("characters attached", zap.Int("count", attached))

	driver := energy.NewRegenDriver(manager, logger, cfg.Game.RegenTickInterval, cfg.Game.FlushInterval)

	// Mirror the transaction stream into the log; the anti-cheat
	// collaborator tails it from there.
	transactions := make(chan energy.Transaction, 256)
	manager.Subscribe(transactions)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("transaction-log", &server.ContextService{
		Run: func(ctx context.Context) error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case tx := <-transactions:
					logger.Info("energy transaction",
						zap.String("id", tx.ID.String()),
						zap.Int64("character_id", tx.CharacterID),
						zap.Int("delta", tx.Delta),
						zap.String("reason", string(tx.Reason)),
						zap.Time("at", tx.At),
					)
				}
			}
		},
	})
	lifecycle.Add("regen-driver", &server.ContextService{Run: driver.Run})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle failed", zap.Error(err))
	}
}
