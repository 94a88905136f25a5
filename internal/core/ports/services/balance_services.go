package services

import (
	"context"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
)

// BalanceMutatorSvc is the only code path allowed to change a balance.
type BalanceMutatorSvc interface {
	// ApplyMutation changes the balance and appends a completed ledger entry in one atomic unit.
	// A transaction id that already exists yields the pre-existing entry with Duplicate set.
	ApplyMutation(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error)

	// RecordFailed appends a failed entry for audit without touching the balance.
	RecordFailed(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error)

	// ReservePending appends a pending entry without touching the balance.
	ReservePending(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error)

	// CompletePending applies a pending entry to the balance and marks it completed.
	CompletePending(ctx context.Context, transactionID string) (*domain.MutationResult, error)

	// CancelPending marks a pending entry failed. Completed and failed entries are never changed.
	CancelPending(ctx context.Context, transactionID string, reason string) (*domain.Transaction, error)
}
