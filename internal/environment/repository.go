package environment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freestay/backend/internal/models"
)

var emptyObject = json.RawMessage(`{}`)

// Section names a JSON column of user_environments.
type Section string

const (
	SectionDashboardConfig Section = "dashboard_config"
	SectionPreferences     Section = "preferences"
)

// Repository handles user environment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an environment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the user's environment; a user without a row gets empty objects.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*models.Environment, error) {
	const q = `SELECT dashboard_config, preferences, updated_at FROM user_environments WHERE user_id = $1`
	env := &models.Environment{UserID: userID}
	err := r.pool.QueryRow(ctx, q, userID).Scan(&env.DashboardConfig, &env.Preferences, &env.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		env.DashboardConfig = emptyObject
		env.Preferences = emptyObject
		return env, nil
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}

// Put replaces one section of the user's environment, creating the row if needed.
func (r *Repository) Put(ctx context.Context, userID uuid.UUID, section Section, doc json.RawMessage) error {
	var q string
	switch section {
	case SectionDashboardConfig:
		q = `INSERT INTO user_environments (user_id, dashboard_config) VALUES ($1, $2::jsonb)
			ON CONFLICT (user_id) DO UPDATE SET dashboard_config = EXCLUDED.dashboard_config, updated_at = NOW()`
	case SectionPreferences:
		q = `INSERT INTO user_environments (user_id, preferences) VALUES ($1, $2::jsonb)
			ON CONFLICT (user_id) DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = NOW()`
	default:
		return fmt.Errorf("unknown environment section %q", section)
	}
	_, err := r.pool.Exec(ctx, q, userID, string(doc))
	return err
}
