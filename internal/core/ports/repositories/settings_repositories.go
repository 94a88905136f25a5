package repositories

import "context"

// SettingsRepository reads and writes per-user settings as strings
type SettingsRepository interface {
	// GetUserSetting returns the raw value, or ErrNotFound when unset.
	GetUserSetting(ctx context.Context, userID string, key string) (string, error)

	// SaveUserSetting upserts a value.
	SaveUserSetting(ctx context.Context, userID string, key string, value string) error
}
