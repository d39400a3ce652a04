package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/game/energy"
	"github.com/calebdrake/fifthstreet/internal/storage/postgres"
	"github.com/calebdrake/fifthstreet/internal/testutil"
)

func TestEnergyRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewEnergyRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("create and load round-trip", func(t *testing.T) {
		id := insertCharacter(t, pool, uniqueName("round"), "soldier")
		state := energy.NewState(id, energy.TierSoldier, energy.DefaultDerived, now)
		state.Current = 42
		state.Fatigue = 17.5
		state.RegenRemainder = 0.25

		require.NoError(t, repo.CreateEnergyState(ctx, state))

		loaded, err := repo.LoadEnergyState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, loaded.CharacterID)
		assert.Equal(t, energy.TierSoldier, loaded.Tier)
		assert.Equal(t, 42, loaded.Current)
		assert.InDelta(t, 17.5, loaded.Fatigue, 1e-9)
		assert.InDelta(t, 0.25, loaded.RegenRemainder, 1e-9)
		assert.WithinDuration(t, now, loaded.LastRegenAt, time.Millisecond)
		assert.WithinDuration(t, now, loaded.LastFatigueAt, time.Millisecond)
	})

	t.Run("load unknown character", func(t *testing.T) {
		_, err := repo.LoadEnergyState(ctx, 999999)
		assert.ErrorIs(t, err, energy.ErrUnknownCharacter)
	})

	t.Run("save updates existing row", func(t *testing.T) {
		id := insertCharacter(t, pool, uniqueName("save"), "street")
		state := energy.NewState(id, energy.TierStreet, energy.DefaultDerived, now)
		require.NoError(t, repo.CreateEnergyState(ctx, state))

		state.Current = 5
		state.Fatigue = 60
		state.LastRegenAt = now.Add(36 * time.Minute)
		require.NoError(t, repo.SaveEnergyState(ctx, state))

		loaded, err := repo.LoadEnergyState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, loaded.Current)
		assert.InDelta(t, 60.0, loaded.Fatigue, 1e-9)
		assert.WithinDuration(t, now.Add(36*time.Minute), loaded.LastRegenAt, time.Millisecond)
	})

	t.Run("save without row fails", func(t *testing.T) {
		state := energy.NewState(insertCharacter(t, pool, uniqueName("norow"), "street"), energy.TierStreet, energy.DefaultDerived, now)
		err := repo.SaveEnergyState(ctx, state)
		assert.ErrorIs(t, err, energy.ErrUnknownCharacter)
	})

	t.Run("duplicate create fails", func(t *testing.T) {
		id := insertCharacter(t, pool, uniqueName("dup"), "street")
		state := energy.NewState(id, energy.TierStreet, energy.DefaultDerived, now)
		require.NoError(t, repo.CreateEnergyState(ctx, state))
		assert.Error(t, repo.CreateEnergyState(ctx, state))
	})

	t.Run("unknown tier name fails load", func(t *testing.T) {
		id := insertCharacter(t, pool, uniqueName("badtier"), "street")
		_, err := pool.Exec(ctx, `
			INSERT INTO energy_states
				(character_id, tier, current_energy, fatigue,
				 last_regen_at, regen_remainder, last_fatigue_at)
			VALUES ($1, 'warlord', 10, 0, $2, 0, $2)`,
			id, now,
		)
		require.NoError(t, err)

		_, err = repo.LoadEnergyState(ctx, id)
		assert.Error(t, err)
	})
}

// TestEnergyRepository_ManagerFlush exercises the manager's persistence
// path against a real database.
func TestEnergyRepository_ManagerFlush(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewEnergyRepository(pool)
	ctx := context.Background()

	id := insertCharacter(t, pool, uniqueName("flush"), "hustler")

	mgr := energy.NewManager(repo, zap.NewNop())
	defer mgr.Close()

	require.NoError(t, mgr.Create(ctx, id, energy.TierHustler, energy.DefaultDerived))
	_, err := mgr.Spend(ctx, id, 18, energy.DefaultDerived)
	require.NoError(t, err)
	require.NoError(t, mgr.FlushAll(ctx))

	loaded, err := repo.LoadEnergyState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Current, "60 - 18")
	assert.InDelta(t, 3.6, loaded.Fatigue, 1e-9)
}
