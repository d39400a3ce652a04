package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calebdrake/fifthstreet/internal/game/skill"
)

// ErrCharacterNotFound is returned when a character lookup yields no
// results. The resolution core propagates it unchanged: it has no authority
// to create or repair character data.
var ErrCharacterNotFound = errors.New("character not found")

// Character is the slice of a character record this core reads: identity
// and tier. Everything else about characters belongs to external systems.
type Character struct {
	ID        int64
	Name      string
	Tier      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CharacterRepository provides read access to character and skill records.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*Character, error) {
	var c Character
	err := r.db.QueryRow(ctx, `
		SELECT id, name, tier, created_at, updated_at
		FROM characters WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Tier, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character %d: %w", id, err)
	}
	return &c, nil
}

// ListIDs returns all character IDs, ordered ascending. The energy daemon
// uses this to attach every character at startup.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM characters ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing character ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning character id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SkillProfile returns the character's skill levels and tier name. It
// satisfies the resolver's ProfileSource contract.
//
// Precondition: characterID must be > 0.
// Postcondition: Returns the profile (possibly empty) and tier, or
// ErrCharacterNotFound when the character does not exist.
func (r *CharacterRepository) SkillProfile(ctx context.Context, characterID int64) (skill.Profile, string, error) {
	c, err := r.GetByID(ctx, characterID)
	if err != nil {
		return nil, "", err
	}

	rows, err := r.db.Query(ctx, `
		SELECT skill_id, level, experience
		FROM character_skills WHERE character_id = $1`,
		characterID,
	)
	if err != nil {
		return nil, "", fmt.Errorf("querying skills for character %d: %w", characterID, err)
	}
	defer rows.Close()

	profile := make(skill.Profile)
	for rows.Next() {
		var (
			id         string
			level      int
			experience int64
		)
		if err := rows.Scan(&id, &level, &experience); err != nil {
			return nil, "", fmt.Errorf("scanning skill row: %w", err)
		}
		profile[skill.ID(id)] = skill.Skill{Level: level, Experience: experience}
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	if err := profile.Validate(); err != nil {
		return nil, "", fmt.Errorf("character %d: %w", characterID, err)
	}
	return profile, c.Tier, nil
}
