package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type configRepo struct {
	db *pgxpool.Pool
}

func NewConfigRepository(db *pgxpool.Pool) ConfigRepository {
	return &configRepo{db: db}
}

func (r *configRepo) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT config_key, config_value FROM configurations`)
	if err != nil {
		return nil, fmt.Errorf("failed to get configurations: %w", err)
	}
	defer rows.Close()

	configs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan configuration: %w", err)
		}
		configs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return configs, nil
}

// Set updates an existing key. Keys are provisioned by the seed migration;
// the update path never creates new ones.
func (r *configRepo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: config key required", ErrInvalidInput)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE configurations SET config_value = $1 WHERE config_key = $2`,
		value, key,
	)
	if err != nil {
		return fmt.Errorf("failed to update configuration %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
