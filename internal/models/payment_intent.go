package models

import (
	"github.com/shopspring/decimal"
)

// PaymentIntent is the payment_intents row.
type PaymentIntent struct {
	Reference string          `db:"reference"`
	UserID    string          `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Method    string          `db:"method"`
	Status    string          `db:"status"`
	AuditFields
}
