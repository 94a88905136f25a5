package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// pgxTx adapts a pgx.Tx to the repositories.Tx port
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// txFrom returns the pgx transaction behind a port Tx
func txFrom(tx portsrepo.Tx) (pgx.Tx, error) {
	ptx, ok := tx.(*pgxTx)
	if !ok || ptx == nil {
		return nil, fmt.Errorf("pgsql: unsupported transaction type %T", tx)
	}
	return ptx.tx, nil
}

// PgxTxManager implements portsrepo.TransactionManager on top of a pgx pool
type PgxTxManager struct {
	BaseRepository
}

func newPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTxManager)(nil)

// Begin starts a new database transaction
func (m *PgxTxManager) Begin(ctx context.Context) (portsrepo.Tx, error) {
	tx, err := m.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", err)
	}
	return &pgxTx{tx: tx}, nil
}

// Commit commits a transaction
func (m *PgxTxManager) Commit(ctx context.Context, tx portsrepo.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (m *PgxTxManager) Rollback(ctx context.Context, tx portsrepo.Tx) error {
	if err := tx.Rollback(ctx); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to rollback transaction", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
