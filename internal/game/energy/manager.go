package energy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store loads and persists energy states. Implementations must return an
// error wrapping ErrUnknownCharacter when no state exists for a character.
type Store interface {
	LoadEnergyState(ctx context.Context, characterID int64) (*State, error)
	SaveEnergyState(ctx context.Context, s *State) error
	CreateEnergyState(ctx context.Context, s *State) error
}

// Receipt reports the committed effect of a successful spend.
type Receipt struct {
	Cost         int
	FatigueDelta float64
	Snapshot     Snapshot
}

// actorBufferSize bounds how many operations may queue per character before
// senders block.
const actorBufferSize = 16

// actorOp runs inside the owning goroutine with exclusive access.
type actorOp func(o *owned)

// owned is the per-character state only its actor goroutine touches.
type owned struct {
	state   *State
	derived Derived
	dirty   bool
}

type actor struct {
	requests chan actorOp
	quit     chan struct{}
}

// Manager serializes all energy mutations per character through a
// single-writer actor goroutine: any number of concurrent requests for
// different characters proceed fully in parallel, while Regenerate and
// Spend for one character are structurally serial. This is what closes the
// duplicate-spend and regeneration double-counting races.
//
// Characters attach lazily through the Store on first use; mutated states
// are written back on Flush and at shutdown.
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	actors map[int64]*actor
	closed bool

	subMu sync.Mutex
	subs  map[chan<- Transaction]struct{}
}

// NewManager creates a Manager backed by store.
//
// Precondition: store and logger must be non-nil.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if store == nil {
		panic("energy: NewManager: store must be non-nil")
	}
	if logger == nil {
		panic("energy: NewManager: logger must be non-nil")
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		actors: make(map[int64]*actor),
		subs:   make(map[chan<- Transaction]struct{}),
	}
}

// SetClock overrides the time source. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Create initialises a brand-new character at full energy and zero fatigue,
// persists the state, and attaches its actor.
//
// Precondition: characterID > 0.
// Postcondition: The character is spendable immediately, or an error is
// returned and nothing is attached.
func (m *Manager) Create(ctx context.Context, characterID int64, tier Tier, d Derived) error {
	state := NewState(characterID, tier, d, m.now())
	if err := m.store.CreateEnergyState(ctx, state); err != nil {
		return fmt.Errorf("creating energy state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("energy: manager is closed")
	}
	if _, exists := m.actors[characterID]; exists {
		return fmt.Errorf("energy: character %d already attached", characterID)
	}
	m.spawnLocked(characterID, state, d)
	return nil
}

// attach returns the character's actor, loading its state through the Store
// on first use.
func (m *Manager) attach(ctx context.Context, characterID int64) (*actor, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("energy: manager is closed")
	}
	if a, ok := m.actors[characterID]; ok {
		m.mu.Unlock()
		return a, nil
	}
	m.mu.Unlock()

	// Load outside the map lock; the store is a synchronous dependency
	// boundary and may touch the database.
	state, err := m.store.LoadEnergyState(ctx, characterID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("energy: manager is closed")
	}
	if a, ok := m.actors[characterID]; ok {
		// Another request attached the character while we loaded.
		return a, nil
	}
	return m.spawnLocked(characterID, state, DefaultDerived), nil
}

func (m *Manager) spawnLocked(characterID int64, state *State, d Derived) *actor {
	a := &actor{
		requests: make(chan actorOp, actorBufferSize),
		quit:     make(chan struct{}),
	}
	m.actors[characterID] = a
	go a.run(&owned{state: state, derived: d})
	return a
}

func (a *actor) run(o *owned) {
	for {
		select {
		case op := <-a.requests:
			op(o)
		case <-a.quit:
			return
		}
	}
}

// do submits op to the character's actor and waits for it to run.
func (m *Manager) do(ctx context.Context, characterID int64, op actorOp) error {
	a, err := m.attach(ctx, characterID)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	wrapped := func(o *owned) {
		defer close(done)
		op(o)
	}

	select {
	case a.requests <- wrapped:
	case <-a.quit:
		return fmt.Errorf("energy: character %d actor stopped", characterID)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// catchUp applies lazy regeneration and fatigue recovery so every spend and
// snapshot sees correctly up-to-date energy regardless of driver cadence.
func (m *Manager) catchUp(o *owned, now time.Time) {
	recovered := o.state.RecoverFatigue(now, o.derived)
	added := o.state.Regenerate(now, o.derived)
	if added > 0 || recovered > 0 {
		o.dirty = true
	}
	if added > 0 {
		m.emit(newTransaction(o.state.CharacterID, added, ReasonRegen, now))
		m.logger.Debug("energy regenerated",
			zap.Int64("character_id", o.state.CharacterID),
			zap.Int("added", added),
			zap.Int("current", o.state.Current),
			zap.Float64("fatigue", o.state.Fatigue),
		)
	}
	if err := o.state.CheckInvariants(o.derived); err != nil {
		// Must be unreachable given per-character serialization; surfaced
		// loudly rather than silently clamped.
		m.logger.Error("energy invariant violated", zap.Error(err))
	}
}

// Spend atomically debits cost from the character after catching up lazy
// regeneration. The check-and-decrement is a single step inside the
// character's actor: N concurrent spends against exactly cost energy yield
// exactly one success.
//
// Precondition: cost > 0.
// Postcondition: On success the receipt reflects committed state; on an
// insufficient balance an InsufficientEnergyError is returned with no state
// change. A context error returned after the operation was queued does not
// imply rollback: the actor may still commit the debit. Callers that time
// out should consult Status or the transaction stream rather than assume
// the spend was abandoned.
func (m *Manager) Spend(ctx context.Context, characterID int64, cost int, d Derived) (Receipt, error) {
	var (
		receipt  Receipt
		spendErr error
	)
	err := m.do(ctx, characterID, func(o *owned) {
		o.derived = d
		now := m.now()
		m.catchUp(o, now)

		fatigueDelta, err := o.state.Spend(cost, d)
		if err != nil {
			spendErr = err
			return
		}
		o.dirty = true
		m.emit(newTransaction(characterID, -cost, ReasonSpend, now))
		m.logger.Debug("energy spent",
			zap.Int64("character_id", characterID),
			zap.Int("cost", cost),
			zap.Int("current", o.state.Current),
			zap.Float64("fatigue_delta", fatigueDelta),
		)
		receipt = Receipt{
			Cost:         cost,
			FatigueDelta: fatigueDelta,
			Snapshot:     o.state.snapshot(d),
		}
	})
	if err != nil {
		return Receipt{}, err
	}
	if spendErr != nil {
		return Receipt{}, spendErr
	}
	return receipt, nil
}

// Status returns a lazily regenerated snapshot for UI display.
func (m *Manager) Status(ctx context.Context, characterID int64, d Derived) (Snapshot, error) {
	var snap Snapshot
	err := m.do(ctx, characterID, func(o *owned) {
		o.derived = d
		m.catchUp(o, m.now())
		snap = o.state.snapshot(d)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Tick runs lazy regeneration for every attached character using each
// actor's cached derived parameters. Because Regenerate is defined purely
// in terms of elapsed ticks, calling this more or less often than every 12
// minutes is safe; the periodic driver is an optimization, not a
// correctness requirement.
func (m *Manager) Tick() {
	m.mu.Lock()
	actors := make([]*actor, 0, len(m.actors))
	for _, a := range m.actors {
		actors = append(actors, a)
	}
	m.mu.Unlock()

	for _, a := range actors {
		op := func(o *owned) { m.catchUp(o, m.now()) }
		select {
		case a.requests <- op:
		case <-a.quit:
		}
	}
}

// FlushAll writes every dirty state back through the Store. States are
// copied out of their actors first so persistence never blocks a spend.
//
// Postcondition: Returns the first save error, after attempting all saves.
func (m *Manager) FlushAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.actors))
	for id := range m.actors {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		var pending *State
		err := m.do(ctx, id, func(o *owned) {
			if o.dirty {
				pending = o.state.Clone()
				o.dirty = false
			}
		})
		if err == nil && pending != nil {
			err = m.store.SaveEnergyState(ctx, pending)
			if err != nil {
				// Put the dirty mark back so the next flush retries this
				// character instead of treating the failed write as durable.
				_ = m.do(ctx, id, func(o *owned) { o.dirty = true })
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if err != nil {
			m.logger.Error("flushing energy state",
				zap.Int64("character_id", id),
				zap.Error(err),
			)
		}
	}
	return firstErr
}

// Close stops all actors. Callers should FlushAll first; operations after
// Close fail.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, a := range m.actors {
		close(a.quit)
	}
}
