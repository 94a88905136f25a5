package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
)

// PaymentIntentRepository stores the payments users start with the gateway
type PaymentIntentRepository interface {
	// SaveIntent persists a new intent. Returns ErrDuplicate for a reused reference.
	SaveIntent(ctx context.Context, intent domain.PaymentIntent) error

	// FindIntentByReference returns the intent for a gateway reference, or ErrNotFound.
	FindIntentByReference(ctx context.Context, reference string) (*domain.PaymentIntent, error)

	// UpdateIntentStatus records the final state of an intent.
	UpdateIntentStatus(ctx context.Context, reference string, status domain.PaymentIntentStatus, now time.Time) error
}
