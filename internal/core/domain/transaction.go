package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a ledger entry adds to or removes from the balance.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// IsValid reports whether d is one of the known directions.
func (d Direction) IsValid() bool {
	return d == Debit || d == Credit
}

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// IsValid reports whether s is one of the known statuses.
func (s TransactionStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Well known service tags. Service is free-form, these are the ones the wallet itself writes.
const (
	ServiceTopUp   = "top-up"
	ServicePayment = "payment"
	ServiceSMS     = "sms"
	ServiceVoice   = "voice"
)

// Transaction is one balance-affecting event in a user's ledger.
// Rows are immutable once created, except for the pending -> completed/failed transition.
type Transaction struct {
	TransactionID         string            `json:"transactionID"` // Globally unique, the idempotency key
	UserID                string            `json:"userID"`
	Direction             Direction         `json:"direction"`
	Amount                decimal.Decimal   `json:"amount"`       // Always positive
	BalanceAfter          decimal.Decimal   `json:"balanceAfter"` // Account balance right after this entry was applied
	Service               string            `json:"service"`
	Status                TransactionStatus `json:"status"`
	Description           string            `json:"description"`
	OriginalTransactionID *string           `json:"originalTransactionID,omitempty"` // Set on compensating entries
	CreatedAt             time.Time         `json:"createdAt"`
	SettledAt             *time.Time        `json:"settledAt,omitempty"` // When the entry became completed or failed
}

// SignedAmount returns the amount with the sign of its effect on the balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsPending reports whether the entry can still transition.
func (t Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// Validate checks the invariants that hold for every ledger entry.
func (t Transaction) Validate() error {
	if t.TransactionID == "" {
		return errors.New("transaction ID is required")
	}
	if t.UserID == "" {
		return errors.New("user ID is required")
	}
	if !t.Direction.IsValid() {
		return errors.New("direction must be CREDIT or DEBIT")
	}
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if t.BalanceAfter.IsNegative() {
		return errors.New("balance after must not be negative")
	}
	if !t.Status.IsValid() {
		return errors.New("status must be PENDING, COMPLETED or FAILED")
	}
	return nil
}

// ApplyTo returns the balance after applying t to balance. It does not check for
// overdraft; callers decide whether a negative result is acceptable.
func (t Transaction) ApplyTo(balance decimal.Decimal) decimal.Decimal {
	return balance.Add(t.SignedAmount())
}

// ReplayBalance sums the signed amounts of all completed entries.
func ReplayBalance(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.Status == StatusCompleted {
			total = total.Add(t.SignedAmount())
		}
	}
	return total
}
