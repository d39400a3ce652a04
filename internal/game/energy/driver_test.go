package energy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/game/energy"
)

func TestRegenDriver_RunFlushesOnShutdown(t *testing.T) {
	store := energy.NewMemoryStore()
	mgr := energy.NewManager(store, zap.NewNop())
	defer mgr.Close()
	ctx := context.Background()

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, energy.DefaultDerived))
	_, err := mgr.Spend(ctx, 1, 20, energy.DefaultDerived)
	require.NoError(t, err)

	driver := energy.NewRegenDriver(mgr, zap.NewNop(), 10*time.Millisecond, time.Hour)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- driver.Run(runCtx) }()

	// Let a few ticks pass, then shut down; the final flush must persist
	// the spend even though the periodic flush interval never elapsed.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not shut down in time")
	}

	persisted, err := store.LoadEnergyState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, persisted.Current)
	// Continuous fatigue recovery nibbles a sliver during the run.
	assert.InDelta(t, 4.0, persisted.Fatigue, 0.05)
}

func TestNewRegenDriver_InvalidIntervalsPanic(t *testing.T) {
	mgr := energy.NewManager(energy.NewMemoryStore(), zap.NewNop())
	defer mgr.Close()

	assert.Panics(t, func() { energy.NewRegenDriver(mgr, zap.NewNop(), 0, time.Minute) })
	assert.Panics(t, func() { energy.NewRegenDriver(mgr, zap.NewNop(), time.Minute, 0) })
}
