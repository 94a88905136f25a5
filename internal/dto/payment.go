package dto

import (
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest starts a gateway payment.
type InitiatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Method string          `json:"method" binding:"required,max=50"`
}

// InitiatePaymentResponse returns the reference the client hands to the gateway.
type InitiatePaymentResponse struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
}

// VerifyPaymentRequest carries the gateway verification result for a reference.
type VerifyPaymentRequest struct {
	Reference string          `json:"reference" binding:"required,max=100"`
	Amount    decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Outcome   string          `json:"outcome" binding:"required,oneof=success failed pending"`
	Method    string          `json:"method" binding:"max=50"`
	Reason    string          `json:"reason" binding:"max=255"`
}

// SettlementResponse mirrors domain.SettlementResult.
type SettlementResponse struct {
	Success          bool             `json:"success"`
	Processed        bool             `json:"processed"`
	AlreadyProcessed bool             `json:"alreadyProcessed"`
	TransactionID    string           `json:"transactionID"`
	Status           string           `json:"status,omitempty"`
	NewBalance       *decimal.Decimal `json:"newBalance,omitempty"`
}

// ToSettlementResponse converts a domain.SettlementResult to its DTO.
func ToSettlementResponse(r *domain.SettlementResult) SettlementResponse {
	return SettlementResponse{
		Success:          r.Success,
		Processed:        r.Processed,
		AlreadyProcessed: r.AlreadyProcessed,
		TransactionID:    r.TransactionID,
		Status:           string(r.Status),
		NewBalance:       r.NewBalance,
	}
}

// ToInitiatePaymentResponse converts a domain.PaymentIntent to its DTO.
func ToInitiatePaymentResponse(i *domain.PaymentIntent) InitiatePaymentResponse {
	return InitiatePaymentResponse{Reference: i.Reference, Amount: i.Amount, Method: i.Method}
}
