package energy_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calebdrake/fifthstreet/internal/game/energy"
)

// fixedClock is a settable time source for manager tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock { return &fixedClock{now: now} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (*energy.Manager, *energy.MemoryStore, *fixedClock) {
	t.Helper()
	store := energy.NewMemoryStore()
	mgr := energy.NewManager(store, zap.NewNop())
	clock := newFixedClock(t0)
	mgr.SetClock(clock.Now)
	t.Cleanup(mgr.Close)
	return mgr, store, clock
}

func TestManager_CreateAndStatus(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.Derived{MaxBonus: 10, FatigueAccrualScale: 1, FatigueRecoveryPerHour: 10}

	require.NoError(t, mgr.Create(ctx, 1, energy.TierHustler, d))

	snap, err := mgr.Status(ctx, 1, d)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.CharacterID)
	assert.Equal(t, 70, snap.Current, "60 base + 10 bonus")
	assert.Equal(t, 70, snap.Max)
	assert.Zero(t, snap.Fatigue)
	assert.Equal(t, 12.0, snap.RegenPerHour)
}

func TestManager_CreateDuplicateFails(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, energy.DefaultDerived))
	assert.Error(t, mgr.Create(ctx, 1, energy.TierStreet, energy.DefaultDerived))
}

func TestManager_UnknownCharacter(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	_, err := mgr.Status(context.Background(), 99, energy.DefaultDerived)
	assert.ErrorIs(t, err, energy.ErrUnknownCharacter)

	_, err = mgr.Spend(context.Background(), 99, 5, energy.DefaultDerived)
	assert.ErrorIs(t, err, energy.ErrUnknownCharacter)
}

func TestManager_AttachLoadsFromStore(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	ctx := context.Background()

	seed := energy.NewState(5, energy.TierCapo, energy.DefaultDerived, t0)
	seed.Current = 33
	require.NoError(t, store.CreateEnergyState(ctx, seed))

	snap, err := mgr.Status(ctx, 5, energy.DefaultDerived)
	require.NoError(t, err)
	assert.Equal(t, 33, snap.Current)
}

func TestManager_SpendReceipt(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))

	receipt, err := mgr.Spend(ctx, 1, 25, d)
	require.NoError(t, err)
	assert.Equal(t, 25, receipt.Cost)
	assert.InDelta(t, 5.0, receipt.FatigueDelta, 1e-9)
	assert.Equal(t, 25, receipt.Snapshot.Current)
	assert.Equal(t, 5, receipt.Snapshot.Fatigue)
}

func TestManager_SpendInsufficientLeavesStateIntact(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 40, d)
	require.NoError(t, err)

	_, err = mgr.Spend(ctx, 1, 25, d)
	assert.ErrorIs(t, err, energy.ErrInsufficientEnergy)

	snap, err := mgr.Status(ctx, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Current, "failed spend debits nothing")
}

// TestManager_ConcurrentSpends_ExactlyOneSuccess: with exactly one spend's
// worth of energy, N goroutines racing to spend it produce exactly one
// success and N-1 insufficient-energy failures.
func TestManager_ConcurrentSpends_ExactlyOneSuccess(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 25, d) // leave exactly 25
	require.NoError(t, err)

	const n = 32
	var successes, failures atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := mgr.Spend(ctx, 1, 25, d)
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, energy.ErrInsufficientEnergy):
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes.Load())
	assert.Equal(t, int64(n-1), failures.Load())

	snap, err := mgr.Status(ctx, 1, d)
	require.NoError(t, err)
	assert.Zero(t, snap.Current)
}

// TestManager_ConcurrentMixedCharacters drives spends for many characters
// in parallel; per-character totals must be exact.
func TestManager_ConcurrentMixedCharacters(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	const chars = 8
	for id := int64(1); id <= chars; id++ {
		require.NoError(t, mgr.Create(ctx, id, energy.TierKingpin, d))
	}

	var wg sync.WaitGroup
	for id := int64(1); id <= chars; id++ {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, err := mgr.Spend(ctx, id, 5, d)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	for id := int64(1); id <= chars; id++ {
		snap, err := mgr.Status(ctx, id, d)
		require.NoError(t, err)
		assert.Equal(t, 60, snap.Current, "character %d: 110 - 10×5", id)
	}
}

func TestManager_LazyRegenerationOnSpend(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 50, d)
	require.NoError(t, err)

	// One hour later the character can afford a cost no stale balance
	// covers, without any driver tick in between.
	clock.Advance(time.Hour)
	receipt, err := mgr.Spend(ctx, 1, 8, d)
	require.NoError(t, err)
	// Fatigue from the first spend (10) recovered fully over the hour, so
	// regen ran at a rate the fatigue multiplier barely touched.
	assert.GreaterOrEqual(t, receipt.Snapshot.Current, 1)
}

func TestManager_Transactions(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	events := make(chan energy.Transaction, 16)
	mgr.Subscribe(events)
	defer mgr.Unsubscribe(events)

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 30, d)
	require.NoError(t, err)

	tx := <-events
	assert.Equal(t, energy.ReasonSpend, tx.Reason)
	assert.Equal(t, int64(1), tx.CharacterID)
	assert.Equal(t, -30, tx.Delta)
	assert.NotEqual(t, tx.ID.String(), "00000000-0000-0000-0000-000000000000")

	clock.Advance(time.Hour)
	_, err = mgr.Status(ctx, 1, d)
	require.NoError(t, err)

	tx = <-events
	assert.Equal(t, energy.ReasonRegen, tx.Reason)
	assert.Positive(t, tx.Delta)
}

func TestManager_Tick(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 50, d)
	require.NoError(t, err)

	events := make(chan energy.Transaction, 16)
	mgr.Subscribe(events)
	defer mgr.Unsubscribe(events)

	clock.Advance(time.Hour)
	mgr.Tick()

	select {
	case tx := <-events:
		assert.Equal(t, energy.ReasonRegen, tx.Reason)
		assert.Positive(t, tx.Delta)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a regen transaction from Tick")
	}
}

func TestManager_FlushAll(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 20, d)
	require.NoError(t, err)

	require.NoError(t, mgr.FlushAll(ctx))

	persisted, err := store.LoadEnergyState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, persisted.Current)
	assert.InDelta(t, 4.0, persisted.Fatigue, 1e-9)

	// A second flush with no further mutation has nothing to write.
	require.NoError(t, mgr.FlushAll(ctx))
}

func TestManager_StaleDerivedNeverDeductsEnergy(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()
	trained := energy.Derived{MaxBonus: 15, FatigueAccrualScale: 1, FatigueRecoveryPerHour: 10}

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, trained))
	clock.Advance(time.Hour)

	// A caller that only knows the baseline parameters must not clamp a
	// skilled character's full pool down to the smaller ceiling.
	_, err := mgr.Status(ctx, 1, energy.DefaultDerived)
	require.NoError(t, err)

	snap, err := mgr.Status(ctx, 1, trained)
	require.NoError(t, err)
	assert.Equal(t, 65, snap.Current, "a full character must still be full")
	assert.Equal(t, 65, snap.Max)
}

// failOnceStore rejects the first save, then behaves normally.
type failOnceStore struct {
	*energy.MemoryStore
	saves  atomic.Int32
	failed atomic.Bool
}

func (s *failOnceStore) SaveEnergyState(ctx context.Context, st *energy.State) error {
	s.saves.Add(1)
	if s.failed.CompareAndSwap(false, true) {
		return errors.New("connection reset")
	}
	return s.MemoryStore.SaveEnergyState(ctx, st)
}

func TestManager_FlushAllRetriesFailedSave(t *testing.T) {
	store := &failOnceStore{MemoryStore: energy.NewMemoryStore()}
	mgr := energy.NewManager(store, zap.NewNop())
	clock := newFixedClock(t0)
	mgr.SetClock(clock.Now)
	t.Cleanup(mgr.Close)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))
	_, err := mgr.Spend(ctx, 1, 20, d)
	require.NoError(t, err)

	// The first flush fails at the store; the state must stay dirty so the
	// next flush writes the committed spend rather than dropping it.
	require.Error(t, mgr.FlushAll(ctx))
	require.NoError(t, mgr.FlushAll(ctx))

	persisted, err := store.LoadEnergyState(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, persisted.Current)
	assert.Equal(t, int32(2), store.saves.Load())
}

func TestManager_ContextCancelAfterEnqueueStillCommits(t *testing.T) {
	store := energy.NewMemoryStore()
	mgr := energy.NewManager(store, zap.NewNop())
	t.Cleanup(mgr.Close)
	ctx := context.Background()
	d := energy.DefaultDerived

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, d))

	// Gate the clock after creation so the next operation parks inside the
	// actor, keeping a second one queued while we cancel its context.
	release := make(chan struct{})
	mgr.SetClock(func() time.Time {
		<-release
		return t0
	})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := mgr.Spend(ctx, 1, 5, d)
		assert.NoError(t, err)
	}()

	cancelCtx, cancel := context.WithCancel(ctx)
	secondDone := make(chan error, 1)
	go func() {
		_, err := mgr.Spend(cancelCtx, 1, 5, d)
		secondDone <- err
	}()

	// Give the second spend time to enqueue behind the parked one, then
	// cancel its context before the actor can reach it.
	time.Sleep(20 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-secondDone, context.Canceled)

	close(release)
	<-firstDone

	// The cancelled caller got an error, but its debit still committed.
	snap, err := mgr.Status(ctx, 1, d)
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Current)
}

func TestManager_CloseRejectsFurtherOps(t *testing.T) {
	store := energy.NewMemoryStore()
	mgr := energy.NewManager(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, mgr.Create(ctx, 1, energy.TierStreet, energy.DefaultDerived))
	mgr.Close()
	mgr.Close() // idempotent

	_, err := mgr.Spend(ctx, 1, 5, energy.DefaultDerived)
	assert.Error(t, err)
}

func TestNewManager_NilDepsPanic(t *testing.T) {
	assert.Panics(t, func() { energy.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { energy.NewManager(energy.NewMemoryStore(), nil) })
}
