package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines side-effect free reads of the transaction log
type LedgerReader interface {
	// FindByTransactionID returns the entry with the given id, or ErrNotFound.
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListByUser returns a page of a user's entries ordered by createdAt descending,
	// plus a token for the next page when there is one.
	ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// LedgerWriter defines writes to the transaction log. All writes run inside an atomic unit.
type LedgerWriter interface {
	// Insert appends a new entry. Returns ErrConflict if the transaction id already exists.
	Insert(ctx context.Context, tx Tx, txn domain.Transaction) (*domain.Transaction, error)

	// FindByTransactionIDForUpdate reads an entry and locks it until tx ends.
	FindByTransactionIDForUpdate(ctx context.Context, tx Tx, transactionID string) (*domain.Transaction, error)

	// UpdatePendingStatus moves a pending entry to completed or failed. Rows that are
	// not pending are left untouched and ErrInvalidStatusTransition is returned.
	UpdatePendingStatus(ctx context.Context, tx Tx, transactionID string, status domain.TransactionStatus, balanceAfter decimal.Decimal, settledAt time.Time) error
}

// LedgerReporter defines aggregate reads used by the reporting endpoints
type LedgerReporter interface {
	// SummarizeByUser aggregates a user's entries created in [from, to).
	SummarizeByUser(ctx context.Context, userID string, from, to time.Time) (domain.TransactionStats, error)

	// DailyTotals returns completed credit/debit totals per UTC day in [from, to], zero filled.
	DailyTotals(ctx context.Context, userID string, from, to time.Time) ([]domain.TrendPoint, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	LedgerReporter
}
