package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/SscSPs/sms_wallet_app/internal/models"
	"github.com/SscSPs/sms_wallet_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for wallet accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new wallet.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (user_id, balance, currency_code, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAcc.UserID,
		modelAcc.Balance,
		modelAcc.CurrencyCode,
		modelAcc.CreatedAt,
		modelAcc.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: wallet for user %s already exists", apperrors.ErrDuplicate, modelAcc.UserID)
		}
		return fmt.Errorf("failed to save account for user %s: %w", modelAcc.UserID, err)
	}
	return nil
}

// FindAccountByUserID retrieves the wallet of a user.
func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
		SELECT user_id, balance, currency_code, created_at, last_updated_at
		FROM accounts
		WHERE user_id = $1;
	`
	var modelAcc models.Account
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&modelAcc.UserID,
		&modelAcc.Balance,
		&modelAcc.CurrencyCode,
		&modelAcc.CreatedAt,
		&modelAcc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account for user %s: %w", userID, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// GetBalance reads the committed balance without locking.
func (r *PgxAccountRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return scanBalance(r.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1;`, userID), userID)
}

// GetBalanceForUpdate reads the balance and holds the row lock until tx ends.
func (r *PgxAccountRepository) GetBalanceForUpdate(ctx context.Context, tx portsrepo.Tx, userID string) (decimal.Decimal, error) {
	ptx, err := txFrom(tx)
	if err != nil {
		return decimal.Zero, err
	}
	return scanBalance(ptx.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE;`, userID), userID)
}

// SetBalance writes the new balance within tx.
func (r *PgxAccountRepository) SetBalance(ctx context.Context, tx portsrepo.Tx, userID string, newBalance decimal.Decimal, now time.Time) error {
	ptx, err := txFrom(tx)
	if err != nil {
		return err
	}

	query := `UPDATE accounts SET balance = $1, last_updated_at = $2 WHERE user_id = $3;`
	cmdTag, err := ptx.Exec(ctx, query, newBalance, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set balance for user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func scanBalance(row pgx.Row, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read balance for user %s: %w", userID, err)
	}
	return balance, nil
}
