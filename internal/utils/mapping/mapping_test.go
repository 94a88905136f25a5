package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/SscSPs/sms_wallet_app/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionMapping(t *testing.T) {
	original := "PMT-1"
	settled := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := domain.Transaction{
		TransactionID:         "PMT-1-R",
		UserID:                "u1",
		Direction:             domain.Debit,
		Amount:                decimal.RequireFromString("12.34"),
		BalanceAfter:          decimal.RequireFromString("100"),
		Service:               domain.ServicePayment,
		Status:                domain.StatusFailed,
		Description:           "reversal",
		OriginalTransactionID: &original,
		CreatedAt:             settled.Add(-time.Minute),
		SettledAt:             &settled,
	}

	m := ToModelTransaction(d)
	assert.Equal(t, "DEBIT", m.Direction)
	assert.Equal(t, "FAILED", m.Status)
	assert.Equal(t, &original, m.OriginalTransactionID)

	back := ToDomainTransactions([]models.Transaction{m})
	assert.Equal(t, []domain.Transaction{d}, back)
}

func TestPaymentIntentMapping(t *testing.T) {
	now := time.Now().UTC()
	d := domain.PaymentIntent{
		Reference:   "ref",
		UserID:      "u1",
		Amount:      decimal.NewFromInt(5),
		Method:      "card",
		Status:      domain.IntentCompleted,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	m := ToModelPaymentIntent(d)
	assert.Equal(t, "COMPLETED", m.Status)
	assert.Equal(t, d, ToDomainPaymentIntent(m))
}
