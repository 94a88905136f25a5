package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for wallet accounts
type AccountReader interface {
	// FindAccountByUserID retrieves the wallet of a user.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// GetBalance returns the current balance, or ErrAccountNotFound.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// AccountWriter defines write operations for wallet accounts
type AccountWriter interface {
	// SaveAccount persists a new wallet. Returns ErrDuplicate if the user already has one.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines the balance operations that only run inside an atomic unit
type AccountTransactionSupport interface {
	// GetBalanceForUpdate reads the balance and locks the account row until tx ends.
	GetBalanceForUpdate(ctx context.Context, tx Tx, userID string) (decimal.Decimal, error)

	// SetBalance writes the new balance within tx.
	SetBalance(ctx context.Context, tx Tx, userID string, newBalance decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
