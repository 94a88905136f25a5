package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTransactionPrefix is prepended to gateway references to build ledger transaction IDs.
const PaymentTransactionPrefix = "PMT-"

// TransactionIDForReference derives the ledger idempotency key for a gateway reference.
func TransactionIDForReference(reference string) string {
	return PaymentTransactionPrefix + reference
}

// PaymentOutcome is the three-valued result of a payment, independent of gateway vocabulary.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFailed  PaymentOutcome = "failed"
	OutcomePending PaymentOutcome = "pending"
)

// ParsePaymentOutcome parses an outcome string, case-insensitively.
func ParsePaymentOutcome(s string) (PaymentOutcome, error) {
	switch o := PaymentOutcome(strings.ToLower(strings.TrimSpace(s))); o {
	case OutcomeSuccess, OutcomeFailed, OutcomePending:
		return o, nil
	default:
		return "", fmt.Errorf("unknown payment outcome %q", s)
	}
}

// PaymentEvent is a verified or webhook-delivered payment result. It is not persisted itself.
type PaymentEvent struct {
	Reference string
	UserID    string
	Amount    decimal.Decimal
	Outcome   PaymentOutcome
	Method    string
	Reason    string // Gateway supplied failure reason, if any
}

// TransactionID returns the ledger idempotency key for the event.
func (e PaymentEvent) TransactionID() string {
	return TransactionIDForReference(e.Reference)
}

// PaymentIntentStatus tracks what happened to a payment the user started.
type PaymentIntentStatus string

const (
	IntentPending   PaymentIntentStatus = "PENDING"
	IntentCompleted PaymentIntentStatus = "COMPLETED"
	IntentFailed    PaymentIntentStatus = "FAILED"
)

// PaymentIntent is recorded before the user is handed to the gateway. It pins the
// owner and amount so webhook data cannot redirect a credit.
type PaymentIntent struct {
	Reference string              `json:"reference"`
	UserID    string              `json:"userID"`
	Amount    decimal.Decimal     `json:"amount"`
	Method    string              `json:"method"`
	Status    PaymentIntentStatus `json:"status"`
	AuditFields
}

// SettlementResult is what settle reports back to both the verify endpoint and the webhook worker.
type SettlementResult struct {
	Success          bool              `json:"success"`
	Processed        bool              `json:"processed"`
	AlreadyProcessed bool              `json:"alreadyProcessed"`
	TransactionID    string            `json:"transactionID"`
	Status           TransactionStatus `json:"status,omitempty"`
	NewBalance       *decimal.Decimal  `json:"newBalance,omitempty"`
}

// TopUpResult is returned for direct wallet top-ups.
type TopUpResult struct {
	TransactionID string
	NewBalance    decimal.Decimal
	CreatedAt     time.Time
}
