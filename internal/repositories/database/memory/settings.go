package memory

import (
	"context"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
)

func (s *Store) GetUserSetting(_ context.Context, userID string, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.settings[userID][key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (s *Store) SaveUserSetting(_ context.Context, userID string, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings[userID] == nil {
		s.settings[userID] = make(map[string]string)
	}
	s.settings[userID][key] = value
	return nil
}
