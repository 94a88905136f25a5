package models

import (
	"github.com/shopspring/decimal"
)

// Account is the accounts row: one wallet per user.
type Account struct {
	UserID       string          `db:"user_id"`
	Balance      decimal.Decimal `db:"balance"` // CHECK (balance >= 0)
	CurrencyCode string          `db:"currency_code"`
	AuditFields                  // Embed common audit fields
}
