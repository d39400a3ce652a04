package energy

import (
	"time"

	"github.com/google/uuid"
)

// Reason labels why a transaction changed a character's energy.
type Reason string

const (
	// ReasonSpend is an energy debit from an action resolution.
	ReasonSpend Reason = "spend"
	// ReasonRegen is an energy credit from passive regeneration.
	ReasonRegen Reason = "regen"
)

// Transaction records one energy mutation. The manager emits a Transaction
// on every spend and regeneration so external exploit-detection can observe
// the core without the core owning any long-term log.
type Transaction struct {
	ID          uuid.UUID
	CharacterID int64
	// Delta is positive for regeneration, negative for spends.
	Delta  int
	Reason Reason
	At     time.Time
}

// Subscribe registers ch to receive a Transaction on every energy mutation.
// If ch is full, the event is dropped for that subscriber (non-blocking).
//
// Precondition: ch must not be nil.
func (m *Manager) Subscribe(ch chan<- Transaction) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (m *Manager) Unsubscribe(ch chan<- Transaction) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	delete(m.subs, ch)
}

// emit delivers tx to all subscribers without blocking the actor.
func (m *Manager) emit(tx Transaction) {
	m.subMu.Lock()
	subs := make([]chan<- Transaction, 0, len(m.subs))
	for ch := range m.subs {
		subs = append(subs, ch)
	}
	m.subMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- tx:
		default:
		}
	}
}

func newTransaction(characterID int64, delta int, reason Reason, at time.Time) Transaction {
	return Transaction{
		ID:          uuid.New(),
		CharacterID: characterID,
		Delta:       delta,
		Reason:      reason,
		At:          at,
	}
}
