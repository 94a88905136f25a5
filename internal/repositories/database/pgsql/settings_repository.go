package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(pool *pgxpool.Pool) portsrepo.SettingsRepository {
	return &PgxSettingsRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) GetUserSetting(ctx context.Context, userID string, key string) (string, error) {
	var value string
	err := r.Pool.QueryRow(ctx,
		`SELECT value FROM user_settings WHERE user_id = $1 AND key = $2;`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to read setting %s for user %s: %w", key, userID, err)
	}
	return value, nil
}

func (r *PgxSettingsRepository) SaveUserSetting(ctx context.Context, userID string, key string, value string) error {
	query := `
		INSERT INTO user_settings (user_id, key, value, last_updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := r.Pool.Exec(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s for user %s: %w", key, userID, err)
	}
	return nil
}
