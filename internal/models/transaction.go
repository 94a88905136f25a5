package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the wallet_transactions row.
// transaction_id carries the unique constraint the ledger's idempotency rests on.
type Transaction struct {
	TransactionID         string          `db:"transaction_id"`
	UserID                string          `db:"user_id"`
	Direction             string          `db:"direction"`
	Amount                decimal.Decimal `db:"amount"`
	BalanceAfter          decimal.Decimal `db:"balance_after"`
	Service               string          `db:"service"`
	Status                string          `db:"status"`
	Description           string          `db:"description"`
	OriginalTransactionID *string         `db:"original_transaction_id"` // Nullable
	CreatedAt             time.Time       `db:"created_at"`
	SettledAt             *time.Time      `db:"settled_at"` // Nullable while pending
}
