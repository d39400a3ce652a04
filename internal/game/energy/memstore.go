package energy

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store for tools and tests that run the
// resolution pipeline without a database.
type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]*State
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]*State)}
}

// LoadEnergyState returns a copy of the stored state, or an error wrapping
// ErrUnknownCharacter.
func (m *MemoryStore) LoadEnergyState(_ context.Context, characterID int64) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[characterID]
	if !ok {
		return nil, fmt.Errorf("energy state for character %d: %w", characterID, ErrUnknownCharacter)
	}
	return s.Clone(), nil
}

// SaveEnergyState stores a copy of s.
func (m *MemoryStore) SaveEnergyState(_ context.Context, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[s.CharacterID]; !ok {
		return fmt.Errorf("energy state for character %d: %w", s.CharacterID, ErrUnknownCharacter)
	}
	m.states[s.CharacterID] = s.Clone()
	return nil
}

// CreateEnergyState stores the initial state for a new character.
func (m *MemoryStore) CreateEnergyState(_ context.Context, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[s.CharacterID]; ok {
		return fmt.Errorf("energy: character %d already has a state", s.CharacterID)
	}
	m.states[s.CharacterID] = s.Clone()
	return nil
}
