package dto

import (
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID         string          `json:"transactionID"`
	Direction             string          `json:"direction"`
	Amount                decimal.Decimal `json:"amount"`
	BalanceAfter          decimal.Decimal `json:"balanceAfter"`
	Service               string          `json:"service"`
	Status                string          `json:"status"`
	Description           string          `json:"description"`
	OriginalTransactionID *string         `json:"originalTransactionID,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	SettledAt             *time.Time      `json:"settledAt,omitempty"`
}

// ListTransactionsParams defines query parameters for listing a user's transactions.
type ListTransactionsParams struct {
	Limit     int        `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string    `form:"nextToken"`
	Direction string     `form:"direction" binding:"omitempty,oneof=CREDIT DEBIT"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
	Service   string     `form:"service" binding:"max=50"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Pagination describes where a page sits in the full listing.
type Pagination struct {
	Limit     int     `json:"limit"`
	NextToken *string `json:"nextToken,omitempty"`
	HasMore   bool    `json:"hasMore"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

// Filter converts the query parameters to a domain filter.
func (p ListTransactionsParams) Filter() domain.TransactionFilter {
	return domain.TransactionFilter{
		Direction: domain.Direction(p.Direction),
		Status:    domain.TransactionStatus(p.Status),
		Service:   p.Service,
		From:      p.From,
		To:        p.To,
	}
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         t.TransactionID,
		Direction:             string(t.Direction),
		Amount:                t.Amount,
		BalanceAfter:          t.BalanceAfter,
		Service:               t.Service,
		Status:                string(t.Status),
		Description:           t.Description,
		OriginalTransactionID: t.OriginalTransactionID,
		CreatedAt:             t.CreatedAt,
		SettledAt:             t.SettledAt,
	}
}

// ToListTransactionsResponse builds the paged response.
func ToListTransactionsResponse(txns []domain.Transaction, limit int, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToTransactionResponse(t)
	}
	return ListTransactionsResponse{
		Transactions: res,
		Pagination: Pagination{
			Limit:     limit,
			NextToken: nextToken,
			HasMore:   nextToken != nil,
		},
	}
}
