package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/SscSPs/sms_wallet_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

func (s *Store) FindByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.ledger[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return &txn, nil
}

func (s *Store) Insert(ctx context.Context, tx portsrepo.Tx, txn domain.Transaction) (*domain.Transaction, error) {
	mt, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	if err := txn.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	id := txn.TransactionID
	for {
		s.mu.Lock()
		if _, exists := s.ledger[id]; exists {
			s.mu.Unlock()
			return nil, apperrors.ErrConflict
		}
		owner, reserved := s.reserved[id]
		if !reserved {
			s.reserved[id] = mt
			mt.inserts[id] = txn
			s.mu.Unlock()
			return &txn, nil
		}
		s.mu.Unlock()

		if owner == mt {
			return nil, apperrors.ErrConflict
		}
		// Like a unique index: wait for the other unit, then re-check.
		select {
		case <-owner.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *Store) FindByTransactionIDForUpdate(ctx context.Context, tx portsrepo.Tx, transactionID string) (*domain.Transaction, error) {
	mt, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	if staged, ok := mt.inserts[transactionID]; ok {
		return &staged, nil
	}
	if _, err := s.FindByTransactionID(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := mt.lock(ctx, "txn:"+transactionID); err != nil {
		return nil, err
	}
	return mt.current(transactionID)
}

func (s *Store) UpdatePendingStatus(ctx context.Context, tx portsrepo.Tx, transactionID string, status domain.TransactionStatus, balanceAfter decimal.Decimal, settledAt time.Time) error {
	mt, err := s.txFrom(tx)
	if err != nil {
		return err
	}
	if _, staged := mt.inserts[transactionID]; !staged {
		if err := mt.lock(ctx, "txn:"+transactionID); err != nil {
			return err
		}
	}

	txn, err := mt.current(transactionID)
	if err != nil {
		return err
	}
	if !txn.IsPending() {
		return apperrors.ErrInvalidStatusTransition
	}

	txn.Status = status
	txn.BalanceAfter = balanceAfter
	txn.SettledAt = &settledAt

	if _, staged := mt.inserts[transactionID]; staged {
		mt.inserts[transactionID] = *txn
	} else {
		mt.updates[transactionID] = *txn
	}
	return nil
}

// current returns the row as this unit sees it.
func (t *memTx) current(transactionID string) (*domain.Transaction, error) {
	if txn, ok := t.inserts[transactionID]; ok {
		return &txn, nil
	}
	if txn, ok := t.updates[transactionID]; ok {
		return &txn, nil
	}
	return t.store.FindByTransactionID(context.Background(), transactionID)
}

func (s *Store) ListByUser(_ context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var (
		hasCursor bool
		cursorAt  time.Time
		cursorID  string
	)
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid pagination token")
		}
		hasCursor, cursorAt, cursorID = true, at, id
	}

	rows := s.userTransactions(userID, func(t domain.Transaction) bool {
		if !matches(t, filter) {
			return false
		}
		return !hasCursor || pagination.IsAfter(t.CreatedAt, t.TransactionID, cursorAt, cursorID)
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].TransactionID > rows[j].TransactionID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	if limit <= 0 || len(rows) <= limit {
		return rows, nil, nil
	}
	page := rows[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
	return page, &token, nil
}

func (s *Store) SummarizeByUser(_ context.Context, userID string, from, to time.Time) (domain.TransactionStats, error) {
	stats := domain.NewTransactionStats()
	for _, t := range s.userTransactions(userID, inRange(from, to)) {
		stats.Add(t)
	}
	return stats, nil
}

func (s *Store) DailyTotals(_ context.Context, userID string, from, to time.Time) ([]domain.TrendPoint, error) {
	return domain.BuildTrend(s.userTransactions(userID, nil), from, to), nil
}

func (s *Store) userTransactions(userID string, keep func(domain.Transaction) bool) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.Transaction, 0)
	for _, t := range s.ledger {
		if t.UserID != userID {
			continue
		}
		if keep != nil && !keep(t) {
			continue
		}
		rows = append(rows, t)
	}
	return rows
}

func matches(t domain.Transaction, f domain.TransactionFilter) bool {
	if f.Direction != "" && t.Direction != f.Direction {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Service != "" && t.Service != f.Service {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

func inRange(from, to time.Time) func(domain.Transaction) bool {
	return func(t domain.Transaction) bool {
		return !t.CreatedAt.Before(from) && t.CreatedAt.Before(to)
	}
}
