package services

import (
	"context"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentSettlementSvc turns gateway payment results into ledger entries, exactly once per reference.
type PaymentSettlementSvc interface {
	// InitiatePayment records the intent a later settlement is checked against.
	InitiatePayment(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.PaymentIntent, error)

	// Settle applies a payment event. Duplicate events report AlreadyProcessed instead of failing.
	Settle(ctx context.Context, event domain.PaymentEvent) (*domain.SettlementResult, error)

	// SettleInBackground settles on a detached context and only logs failures.
	SettleInBackground(ctx context.Context, event domain.PaymentEvent)

	// Wait blocks until all background settlements have finished.
	Wait()
}
