package energy

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RegenDriver periodically runs lazy regeneration across all attached
// characters and flushes dirty states. Regeneration correctness never
// depends on the cadence: spends catch up on their own, so the driver only
// keeps idle characters' pools and the database warm.
type RegenDriver struct {
	manager       *Manager
	logger        *zap.Logger
	tickInterval  time.Duration
	flushInterval time.Duration
}

// NewRegenDriver creates a driver that ticks every tickInterval and flushes
// every flushInterval.
//
// Precondition: manager and logger must be non-nil; both intervals > 0.
func NewRegenDriver(manager *Manager, logger *zap.Logger, tickInterval, flushInterval time.Duration) *RegenDriver {
	if tickInterval <= 0 || flushInterval <= 0 {
		panic("energy: NewRegenDriver: intervals must be > 0")
	}
	return &RegenDriver{
		manager:       manager,
		logger:        logger,
		tickInterval:  tickInterval,
		flushInterval: flushInterval,
	}
}

// Run drives ticks and flushes until ctx is cancelled, then performs a
// final flush so no committed spend is lost at shutdown.
//
// Postcondition: Returns nil on clean shutdown, or the final flush error.
func (r *RegenDriver) Run(ctx context.Context) error {
	tick := time.NewTicker(r.tickInterval)
	defer tick.Stop()
	flush := time.NewTicker(r.flushInterval)
	defer flush.Stop()

	r.logger.Info("regen driver started",
		zap.Duration("tick_interval", r.tickInterval),
		zap.Duration("flush_interval", r.flushInterval),
	)

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := r.manager.FlushAll(flushCtx)
			r.logger.Info("regen driver stopped", zap.Error(err))
			return err
		case <-tick.C:
			r.manager.Tick()
		case <-flush.C:
			if err := r.manager.FlushAll(ctx); err != nil {
				r.logger.Error("periodic flush failed", zap.Error(err))
			}
		}
	}
}
