package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calebdrake/fifthstreet/internal/game/energy"
)

// EnergyRepository persists per-character energy states. It implements
// energy.Store.
type EnergyRepository struct {
	db *pgxpool.Pool
}

// NewEnergyRepository creates an EnergyRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEnergyRepository(db *pgxpool.Pool) *EnergyRepository {
	return &EnergyRepository{db: db}
}

// LoadEnergyState retrieves a character's energy state.
//
// Precondition: characterID must be > 0.
// Postcondition: Returns the state, or an error wrapping
// energy.ErrUnknownCharacter when no row exists.
func (r *EnergyRepository) LoadEnergyState(ctx context.Context, characterID int64) (*energy.State, error) {
	var (
		s        energy.State
		tierName string
	)
	err := r.db.QueryRow(ctx, `
		SELECT character_id, tier, current_energy, fatigue,
		       last_regen_at, regen_remainder, last_fatigue_at
		FROM energy_states WHERE character_id = $1`,
		characterID,
	).Scan(
		&s.CharacterID, &tierName, &s.Current, &s.Fatigue,
		&s.LastRegenAt, &s.RegenRemainder, &s.LastFatigueAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("energy state for character %d: %w", characterID, energy.ErrUnknownCharacter)
		}
		return nil, fmt.Errorf("querying energy state for character %d: %w", characterID, err)
	}

	tier, err := energy.TierByName(tierName)
	if err != nil {
		return nil, fmt.Errorf("character %d: %w", characterID, err)
	}
	s.Tier = tier
	return &s, nil
}

// SaveEnergyState writes a character's energy state back.
//
// Precondition: a row for s.CharacterID must already exist.
// Postcondition: Returns nil on success; the row matches s.
func (r *EnergyRepository) SaveEnergyState(ctx context.Context, s *energy.State) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE energy_states
		SET tier = $2, current_energy = $3, fatigue = $4,
		    last_regen_at = $5, regen_remainder = $6, last_fatigue_at = $7,
		    updated_at = now()
		WHERE character_id = $1`,
		s.CharacterID, s.Tier.Name, s.Current, s.Fatigue,
		s.LastRegenAt, s.RegenRemainder, s.LastFatigueAt,
	)
	if err != nil {
		return fmt.Errorf("updating energy state for character %d: %w", s.CharacterID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("energy state for character %d: %w", s.CharacterID, energy.ErrUnknownCharacter)
	}
	return nil
}

// CreateEnergyState inserts the initial energy state for a new character.
//
// Precondition: no row for s.CharacterID exists yet.
// Postcondition: Returns nil on success or an error on duplicate.
func (r *EnergyRepository) CreateEnergyState(ctx context.Context, s *energy.State) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO energy_states
			(character_id, tier, current_energy, fatigue,
			 last_regen_at, regen_remainder, last_fatigue_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.CharacterID, s.Tier.Name, s.Current, s.Fatigue,
		s.LastRegenAt, s.RegenRemainder, s.LastFatigueAt,
	)
	if err != nil {
		return fmt.Errorf("inserting energy state for character %d: %w", s.CharacterID, err)
	}
	return nil
}
