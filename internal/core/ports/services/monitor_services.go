package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// LowBalanceMonitorSvc decides whether a debit should raise a low balance alert.
type LowBalanceMonitorSvc interface {
	// AfterDebit checks newBalance against the user's threshold and dispatches alerts. It never fails.
	AfterDebit(ctx context.Context, userID string, newBalance decimal.Decimal)

	// Threshold returns the user's threshold, or the system default when unset.
	Threshold(ctx context.Context, userID string) decimal.Decimal

	// SetThreshold stores a per-user threshold.
	SetThreshold(ctx context.Context, userID string, threshold decimal.Decimal) error
}
