package memory

import (
	"context"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
)

func (s *Store) SaveIntent(_ context.Context, intent domain.PaymentIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.intents[intent.Reference]; exists {
		return apperrors.ErrDuplicate
	}
	s.intents[intent.Reference] = intent
	return nil
}

func (s *Store) FindIntentByReference(_ context.Context, reference string) (*domain.PaymentIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	intent, ok := s.intents[reference]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment intent " + reference + " not found")
	}
	return &intent, nil
}

func (s *Store) UpdateIntentStatus(_ context.Context, reference string, status domain.PaymentIntentStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[reference]
	if !ok {
		return apperrors.NewNotFoundError("payment intent " + reference + " not found")
	}
	intent.Status = status
	intent.LastUpdatedAt = now
	s.intents[reference] = intent
	return nil
}
