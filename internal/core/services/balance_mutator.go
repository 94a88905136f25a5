package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
)

// balanceMutator implements the BalanceMutatorSvc interface
type balanceMutator struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	notifier    portssvc.Notifier
}

// MutatorOption is a functional option for configuring the balance mutator
type MutatorOption func(*balanceMutator)

// WithNotifier sets the collaborator told about committed balance changes
func WithNotifier(notifier portssvc.Notifier) MutatorOption {
	return func(s *balanceMutator) {
		s.notifier = notifier
	}
}

// WithMutatorClock overrides the time source
func WithMutatorClock(now func() time.Time) MutatorOption {
	return func(s *balanceMutator) {
		s.Now = now
	}
}

// NewBalanceMutator creates a new balance mutator with the provided options
func NewBalanceMutator(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	options ...MutatorOption,
) portssvc.BalanceMutatorSvc {
	svc := &balanceMutator{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure balanceMutator implements the BalanceMutatorSvc interface
var _ portssvc.BalanceMutatorSvc = (*balanceMutator)(nil)

func validateMutation(req domain.MutationRequest) error {
	if !req.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user ID is required")
	}
	if req.TransactionID == "" {
		return apperrors.NewValidationError("transaction ID is required")
	}
	if !req.Direction.IsValid() {
		return apperrors.NewValidationError("direction must be CREDIT or DEBIT")
	}
	return nil
}

func (s *balanceMutator) ApplyMutation(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	if err := validateMutation(req); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin balance mutation", slog.String("transaction_id", req.TransactionID))
		return nil, err
	}
	// Rolling back a committed unit is a no-op
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	// Locks the account row until the unit ends.
	balance, err := s.accountRepo.GetBalanceForUpdate(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}

	// With the account locked, any earlier mutation of this user under the same id is committed and visible.
	if existing, err := s.ledgerRepo.FindByTransactionID(ctx, req.TransactionID); err == nil {
		return s.duplicateResult(ctx, req, existing)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if req.Direction == domain.Debit && req.Amount.GreaterThan(balance) {
		s.LogInfo(ctx, "Debit rejected for insufficient balance",
			slog.String("user_id", req.UserID),
			slog.String("transaction_id", req.TransactionID),
			slog.String("amount", req.Amount.String()),
			slog.String("balance", balance.String()))
		return nil, apperrors.ErrInsufficientBalance
	}

	now := s.now()
	txn := domain.Transaction{
		TransactionID:         req.TransactionID,
		UserID:                req.UserID,
		Direction:             req.Direction,
		Amount:                req.Amount,
		Service:               req.Service,
		Status:                domain.StatusCompleted,
		Description:           req.Description,
		OriginalTransactionID: req.OriginalTransactionID,
		CreatedAt:             now,
		SettledAt:             &now,
	}
	newBalance := txn.ApplyTo(balance)
	txn.BalanceAfter = newBalance

	if err := s.accountRepo.SetBalance(ctx, tx, req.UserID, newBalance, now); err != nil {
		s.LogError(ctx, err, "Failed to write balance", slog.String("user_id", req.UserID))
		return nil, err
	}

	saved, err := s.ledgerRepo.Insert(ctx, tx, txn)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			_ = s.txManager.Rollback(ctx, tx)
			return s.recoverDuplicate(ctx, req)
		}
		s.LogError(ctx, err, "Failed to insert ledger entry", slog.String("transaction_id", req.TransactionID))
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit balance mutation", slog.String("transaction_id", req.TransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Balance mutated",
		slog.String("user_id", req.UserID),
		slog.String("transaction_id", req.TransactionID),
		slog.String("direction", string(req.Direction)),
		slog.String("amount", req.Amount.String()),
		slog.String("new_balance", newBalance.String()))

	s.notify(ctx, *saved)

	return &domain.MutationResult{Transaction: *saved, NewBalance: newBalance}, nil
}

func (s *balanceMutator) RecordFailed(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	now := s.now()
	return s.insertWithoutBalanceChange(ctx, req, domain.StatusFailed, &now)
}

func (s *balanceMutator) ReservePending(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	return s.insertWithoutBalanceChange(ctx, req, domain.StatusPending, nil)
}

// insertWithoutBalanceChange writes an audit entry that leaves the balance alone.
// It shares the duplicate detection of ApplyMutation.
func (s *balanceMutator) insertWithoutBalanceChange(ctx context.Context, req domain.MutationRequest, status domain.TransactionStatus, settledAt *time.Time) (*domain.MutationResult, error) {
	if err := validateMutation(req); err != nil {
		return nil, err
	}

	balance, err := s.accountRepo.GetBalance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	txn := domain.Transaction{
		TransactionID:         req.TransactionID,
		UserID:                req.UserID,
		Direction:             req.Direction,
		Amount:                req.Amount,
		BalanceAfter:          balance,
		Service:               req.Service,
		Status:                status,
		Description:           req.Description,
		OriginalTransactionID: req.OriginalTransactionID,
		CreatedAt:             s.now(),
		SettledAt:             settledAt,
	}

	saved, err := s.ledgerRepo.Insert(ctx, tx, txn)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			_ = s.txManager.Rollback(ctx, tx)
			return s.recoverDuplicate(ctx, req)
		}
		s.LogError(ctx, err, "Failed to insert ledger entry",
			slog.String("transaction_id", req.TransactionID),
			slog.String("status", string(status)))
		return nil, err
	}

	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Ledger entry recorded without balance change",
		slog.String("user_id", req.UserID),
		slog.String("transaction_id", req.TransactionID),
		slog.String("status", string(status)))

	return &domain.MutationResult{Transaction: *saved, NewBalance: balance}, nil
}

func (s *balanceMutator) CompletePending(ctx context.Context, transactionID string) (*domain.MutationResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	txn, err := s.ledgerRepo.FindByTransactionIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.IsPending() {
		return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrInvalidStatusTransition, transactionID, txn.Status)
	}

	balance, err := s.accountRepo.GetBalanceForUpdate(ctx, tx, txn.UserID)
	if err != nil {
		return nil, err
	}
	if txn.Direction == domain.Debit && txn.Amount.GreaterThan(balance) {
		return nil, apperrors.ErrInsufficientBalance
	}

	now := s.now()
	newBalance := txn.ApplyTo(balance)
	if err := s.accountRepo.SetBalance(ctx, tx, txn.UserID, newBalance, now); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.UpdatePendingStatus(ctx, tx, transactionID, domain.StatusCompleted, newBalance, now); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit pending completion", slog.String("transaction_id", transactionID))
		return nil, err
	}

	txn.Status = domain.StatusCompleted
	txn.BalanceAfter = newBalance
	txn.SettledAt = &now

	s.LogInfo(ctx, "Pending entry completed",
		slog.String("user_id", txn.UserID),
		slog.String("transaction_id", transactionID),
		slog.String("new_balance", newBalance.String()))

	s.notify(ctx, *txn)

	return &domain.MutationResult{Transaction: *txn, NewBalance: newBalance}, nil
}

func (s *balanceMutator) CancelPending(ctx context.Context, transactionID string, reason string) (*domain.Transaction, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.txManager.Rollback(ctx, tx) }()

	txn, err := s.ledgerRepo.FindByTransactionIDForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.IsPending() {
		return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrInvalidStatusTransition, transactionID, txn.Status)
	}

	now := s.now()
	if err := s.ledgerRepo.UpdatePendingStatus(ctx, tx, transactionID, domain.StatusFailed, txn.BalanceAfter, now); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	txn.Status = domain.StatusFailed
	txn.SettledAt = &now

	s.LogInfo(ctx, "Pending entry cancelled",
		slog.String("user_id", txn.UserID),
		slog.String("transaction_id", transactionID),
		slog.String("reason", reason))

	return txn, nil
}

// recoverDuplicate returns the entry that won the race for req's transaction id.
func (s *balanceMutator) recoverDuplicate(ctx context.Context, req domain.MutationRequest) (*domain.MutationResult, error) {
	existing, err := s.ledgerRepo.FindByTransactionID(ctx, req.TransactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load conflicting ledger entry", slog.String("transaction_id", req.TransactionID))
		return nil, err
	}
	return s.duplicateResult(ctx, req, existing)
}

// duplicateResult treats existing as a replay of req only when it is the same entry.
func (s *balanceMutator) duplicateResult(ctx context.Context, req domain.MutationRequest, existing *domain.Transaction) (*domain.MutationResult, error) {
	if !req.Matches(*existing) {
		s.LogWarn(ctx, "Transaction id reused for a different entry",
			slog.String("transaction_id", req.TransactionID),
			slog.String("user_id", req.UserID),
			slog.String("direction", string(req.Direction)),
			slog.String("amount", req.Amount.String()))
		return nil, apperrors.ErrTransactionIDTaken
	}

	s.LogInfo(ctx, "Duplicate transaction id, returning existing entry", slog.String("transaction_id", req.TransactionID))
	return &domain.MutationResult{
		Transaction: *existing,
		NewBalance:  existing.BalanceAfter,
		Duplicate:   true,
	}, nil
}

// notify hands the change to the notifier. Runs after commit; failures are logged only.
func (s *balanceMutator) notify(ctx context.Context, txn domain.Transaction) {
	if s.notifier == nil {
		return
	}
	change := domain.BalanceChange{
		UserID:        txn.UserID,
		TransactionID: txn.TransactionID,
		Direction:     txn.Direction,
		Amount:        txn.Amount,
		NewBalance:    txn.BalanceAfter,
		Service:       txn.Service,
	}
	if err := s.notifier.NotifyBalanceChange(ctx, change); err != nil {
		s.LogError(ctx, fmt.Errorf("%w: %v", apperrors.ErrNotificationDelivery, err), "Balance change notification not dispatched",
			slog.String("transaction_id", txn.TransactionID))
	}
}
