package memory

import (
	"context"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

func (s *Store) FindAccountByUserID(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &acc, nil
}

func (s *Store) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	acc, err := s.FindAccountByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	if account.Balance.IsNegative() {
		return apperrors.NewValidationError("balance must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.UserID]; exists {
		return apperrors.ErrDuplicate
	}
	s.accounts[account.UserID] = account
	return nil
}

func (s *Store) GetBalanceForUpdate(ctx context.Context, tx portsrepo.Tx, userID string) (decimal.Decimal, error) {
	mt, err := s.txFrom(tx)
	if err != nil {
		return decimal.Zero, err
	}
	if _, err := s.FindAccountByUserID(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	if err := mt.lock(ctx, "account:"+userID); err != nil {
		return decimal.Zero, err
	}

	if staged, ok := mt.balances[userID]; ok {
		return staged.balance, nil
	}
	return s.GetBalance(ctx, userID)
}

func (s *Store) SetBalance(ctx context.Context, tx portsrepo.Tx, userID string, newBalance decimal.Decimal, now time.Time) error {
	mt, err := s.txFrom(tx)
	if err != nil {
		return err
	}
	if newBalance.IsNegative() {
		return apperrors.NewValidationError("balance must not be negative")
	}
	if _, err := s.FindAccountByUserID(ctx, userID); err != nil {
		return err
	}
	if err := mt.lock(ctx, "account:"+userID); err != nil {
		return err
	}

	mt.balances[userID] = stagedBalance{balance: newBalance, at: now}
	return nil
}
