package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a user's wallet. Balance is owned by the account store and is
// only ever changed through the balance mutator.
type Account struct {
	UserID       string          `json:"userID"`       // Primary Key, one wallet per user
	Balance      decimal.Decimal `json:"balance"`      // Never negative
	CurrencyCode string          `json:"currencyCode"` // Wallet currency, e.g. NGN
	AuditFields
}
