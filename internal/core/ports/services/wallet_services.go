package services

import (
	"context"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/shopspring/decimal"
)

// WalletReaderSvc defines read operations on a user's wallet
type WalletReaderSvc interface {
	// GetWallet returns the user's wallet.
	GetWallet(ctx context.Context, userID string) (*domain.Account, error)

	// GetTransaction returns one of the user's ledger entries. Entries owned by others read as not found.
	GetTransaction(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns a page of the user's ledger.
	ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// WalletWriterSvc defines wallet operations that change the balance
type WalletWriterSvc interface {
	// OpenWallet creates an empty wallet for the user.
	OpenWallet(ctx context.Context, userID string) (*domain.Account, error)

	// TopUp credits the wallet under a freshly generated transaction id.
	TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.TopUpResult, error)

	// Debit charges the wallet for a service and runs the low balance check.
	Debit(ctx context.Context, userID string, req dto.DebitRequest) (*domain.MutationResult, error)

	// ReservePending records a pending entry for the user without moving the balance.
	ReservePending(ctx context.Context, userID string, req dto.PendingRequest) (*domain.MutationResult, error)

	// CompletePending applies one of the user's pending entries. Completed debits run the low balance check.
	CompletePending(ctx context.Context, userID string, transactionID string) (*domain.MutationResult, error)

	// CancelPending marks one of the user's pending entries as failed.
	CancelPending(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, error)
}

// WalletReportingSvc defines aggregate reads
type WalletReportingSvc interface {
	// GetStats summarises the ledger in [from, to).
	GetStats(ctx context.Context, userID string, params dto.StatsParams) (*domain.TransactionStats, error)

	// GetTrend returns daily totals for the last n days.
	GetTrend(ctx context.Context, userID string, days int) ([]domain.TrendPoint, error)
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
	WalletReportingSvc
}
