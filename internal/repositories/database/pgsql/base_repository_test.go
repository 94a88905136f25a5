package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestTxFrom_RejectsForeignTransactions(t *testing.T) {
	_, err := txFrom(foreignTx{})
	assert.Error(t, err)

	_, err = txFrom(nil)
	assert.Error(t, err)

	var nilTx *pgxTx
	_, err = txFrom(nilTx)
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestListByUser_InvalidTokenFailsBeforeQuerying(t *testing.T) {
	repo := newPgxLedgerRepository(nil)
	bad := "%%%not-base64"

	_, _, err := repo.ListByUser(context.Background(), "u1", domain.TransactionFilter{}, 10, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLedgerWritesRequireAPgxTransaction(t *testing.T) {
	repo := newPgxLedgerRepository(nil)

	_, err := repo.Insert(context.Background(), foreignTx{}, domain.Transaction{TransactionID: "t1"})
	assert.Error(t, err)
	_, err = repo.FindByTransactionIDForUpdate(context.Background(), foreignTx{}, "t1")
	assert.Error(t, err)
}
