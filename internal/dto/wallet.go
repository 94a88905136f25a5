package dto

import (
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResponse is returned by the balance endpoint.
type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// TopUpRequest defines a direct wallet top-up.
type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Method string          `json:"method" binding:"required,max=50"`
}

// TopUpResponse is returned after a successful top-up.
type TopUpResponse struct {
	TransactionID string          `json:"transactionID"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// DebitRequest charges a wallet for a service (sms, voice, ...).
// TransactionID is optional; callers retrying a timed out request must send the same one.
type DebitRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Service       string          `json:"service" binding:"required,max=50"`
	Description   string          `json:"description" binding:"max=255"`
	TransactionID string          `json:"transactionID" binding:"omitempty,max=100"`
}

// MutationResponse reports the entry written (or found) by a balance change.
type MutationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NewBalance  decimal.Decimal     `json:"newBalance"`
	Duplicate   bool                `json:"duplicate"`
}

// PendingRequest reserves a deferred entry without changing the balance.
type PendingRequest struct {
	TransactionID string           `json:"transactionID" binding:"required,max=100"`
	Direction     domain.Direction `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Amount        decimal.Decimal  `json:"amount" binding:"required,decimal_gt0"`
	Service       string           `json:"service" binding:"required,max=50"`
	Description   string           `json:"description" binding:"max=255"`
}

// CancelPendingRequest cancels a pending entry.
type CancelPendingRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// LowBalanceThresholdRequest updates the user's alert threshold.
type LowBalanceThresholdRequest struct {
	Threshold decimal.Decimal `json:"threshold" binding:"decimal_gte0"`
}

// LowBalanceThresholdResponse returns the effective threshold.
type LowBalanceThresholdResponse struct {
	Threshold decimal.Decimal `json:"threshold"`
}

// StatsParams defines query parameters for the stats endpoint.
type StatsParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// TrendParams defines query parameters for the trend endpoint.
type TrendParams struct {
	Days int `form:"days,default=30" binding:"min=1,max=366"`
}

// ToMutationResponse converts a domain.MutationResult to its DTO.
func ToMutationResponse(res *domain.MutationResult) MutationResponse {
	return MutationResponse{
		Transaction: ToTransactionResponse(res.Transaction),
		NewBalance:  res.NewBalance,
		Duplicate:   res.Duplicate,
	}
}
