package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/travel/internal/plugin"
)

// SettingsRepository stores plugin settings in the plugin_settings table.
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a SettingsRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the value saved under key.
//
// Postcondition: Returns plugin.ErrNotFound when no row exists for key.
func (r *SettingsRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := r.db.QueryRow(ctx,
		`SELECT value FROM plugin_settings WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plugin.ErrNotFound
		}
		return nil, fmt.Errorf("querying settings %q: %w", key, err)
	}
	return value, nil
}

// Save upserts value under key.
func (r *SettingsRepository) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO plugin_settings (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("saving settings %q: %w", key, err)
	}
	return nil
}
