package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Ledger error taxonomy.
var (
	// ErrInvalidAmount is returned for non-positive amounts, before anything is written.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)

	// ErrAccountNotFound is returned when the wallet account for a user does not exist.
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)

	// ErrInsufficientBalance is returned when a debit exceeds the current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConflict signals that a transaction id is already present in the ledger.
	// It is recovered internally and never surfaced to API callers.
	ErrConflict = fmt.Errorf("%w: transaction id", ErrDuplicate)

	// ErrTransactionIDTaken is returned when a transaction id is reused for a different entry:
	// another user's, or the same user's with another direction or amount.
	ErrTransactionIDTaken = fmt.Errorf("%w: transaction id is used by a different entry", ErrDuplicate)

	// ErrUserMismatch is returned when a payment event's user does not own the payment intent.
	ErrUserMismatch = errors.New("payment user does not match payment intent owner")

	// ErrAmountMismatch is returned when a payment event's amount differs from the payment intent.
	ErrAmountMismatch = errors.New("payment amount does not match payment intent")

	// ErrPaymentIntentNotFound is returned when a settlement references an unknown payment.
	ErrPaymentIntentNotFound = fmt.Errorf("%w: payment intent", ErrNotFound)

	// ErrInvalidStatusTransition is returned when trying to change a transaction that is no longer pending.
	ErrInvalidStatusTransition = errors.New("transaction status cannot be changed")

	// ErrNotificationDelivery wraps failures of notification collaborators. Logged only.
	ErrNotificationDelivery = errors.New("notification delivery failed")

	// ErrInvalidSignature is returned when a webhook payload signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// AppError carries an HTTP-ish status code and a message alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is / errors.As to see through the AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError wrapping ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError creates an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}
