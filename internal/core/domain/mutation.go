package domain

import "github.com/shopspring/decimal"

// MutationRequest describes one balance change for the balance mutator.
type MutationRequest struct {
	UserID                string
	TransactionID         string
	Direction             Direction
	Amount                decimal.Decimal
	Service               string
	Description           string
	OriginalTransactionID *string
}

// MutationResult is returned by the balance mutator.
type MutationResult struct {
	Transaction Transaction
	NewBalance  decimal.Decimal
	Duplicate   bool // The transaction id already existed; Transaction is the pre-existing row
}

// Matches reports whether txn is the entry req would have written.
// A transaction id only identifies a retry when owner, direction and amount agree.
func (r MutationRequest) Matches(txn Transaction) bool {
	return txn.UserID == r.UserID &&
		txn.Direction == r.Direction &&
		txn.Amount.Equal(r.Amount)
}
