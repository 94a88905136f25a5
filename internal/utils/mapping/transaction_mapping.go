package mapping

import (
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/SscSPs/sms_wallet_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		UserID:                d.UserID,
		Direction:             string(d.Direction),
		Amount:                d.Amount,
		BalanceAfter:          d.BalanceAfter,
		Service:               d.Service,
		Status:                string(d.Status),
		Description:           d.Description,
		OriginalTransactionID: d.OriginalTransactionID,
		CreatedAt:             d.CreatedAt,
		SettledAt:             d.SettledAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		UserID:                m.UserID,
		Direction:             domain.Direction(m.Direction),
		Amount:                m.Amount,
		BalanceAfter:          m.BalanceAfter,
		Service:               m.Service,
		Status:                domain.TransactionStatus(m.Status),
		Description:           m.Description,
		OriginalTransactionID: m.OriginalTransactionID,
		CreatedAt:             m.CreatedAt,
		SettledAt:             m.SettledAt,
	}
}

// ToDomainTransactions converts a slice of model Transactions
func ToDomainTransactions(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
