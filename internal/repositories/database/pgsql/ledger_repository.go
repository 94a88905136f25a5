package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/SscSPs/sms_wallet_app/internal/models"
	"github.com/SscSPs/sms_wallet_app/internal/utils/mapping"
	"github.com/SscSPs/sms_wallet_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, user_id, direction, amount, balance_after, service, status, description, original_transaction_id, created_at, settled_at`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// Insert appends an entry. The unique constraint on transaction_id is what makes
// concurrent duplicates lose: the second insert blocks until the first commits, then fails.
func (r *PgxLedgerRepository) Insert(ctx context.Context, tx portsrepo.Tx, txn domain.Transaction) (*domain.Transaction, error) {
	ptx, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO wallet_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = ptx.Exec(ctx, query,
		m.TransactionID,
		m.UserID,
		m.Direction,
		m.Amount,
		m.BalanceAfter,
		m.Service,
		m.Status,
		m.Description,
		m.OriginalTransactionID,
		m.CreatedAt,
		m.SettledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, m.TransactionID)
		}
		return nil, fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return &txn, nil
}

// FindByTransactionID returns a committed entry.
func (r *PgxLedgerRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE transaction_id = $1;`
	return scanTransaction(r.Pool.QueryRow(ctx, query, transactionID), transactionID)
}

// FindByTransactionIDForUpdate reads an entry and locks it until tx ends.
func (r *PgxLedgerRepository) FindByTransactionIDForUpdate(ctx context.Context, tx portsrepo.Tx, transactionID string) (*domain.Transaction, error) {
	ptx, err := txFrom(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE transaction_id = $1 FOR UPDATE;`
	return scanTransaction(ptx.QueryRow(ctx, query, transactionID), transactionID)
}

// UpdatePendingStatus only touches rows that are still pending.
func (r *PgxLedgerRepository) UpdatePendingStatus(ctx context.Context, tx portsrepo.Tx, transactionID string, status domain.TransactionStatus, balanceAfter decimal.Decimal, settledAt time.Time) error {
	ptx, err := txFrom(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE wallet_transactions
		SET status = $1, balance_after = $2, settled_at = $3
		WHERE transaction_id = $4 AND status = $5;
	`
	cmdTag, err := ptx.Exec(ctx, query, string(status), balanceAfter, settledAt, transactionID, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInvalidStatusTransition
	}
	return nil
}

// ListByUser pages through a user's history, newest first, using a
// (created_at, transaction_id) keyset cursor.
func (r *PgxLedgerRepository) ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	addCond := func(expr string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.Direction != "" {
		addCond("direction = $%d", string(filter.Direction))
	}
	if filter.Status != "" {
		addCond("status = $%d", string(filter.Status))
	}
	if filter.Service != "" {
		addCond("service = $%d", filter.Service)
	}
	if filter.From != nil {
		addCond("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCond("created_at < $%d", *filter.To)
	}

	if nextToken != nil && *nextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid pagination token")
		}
		args = append(args, cursorAt, cursorID)
		conds = append(conds, fmt.Sprintf("(created_at, transaction_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE ` +
		strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, transaction_id DESC`
	if limit > 0 {
		// Fetch one extra row to know whether another page exists.
		args = append(args, limit+1)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows, "")
		if err != nil {
			return nil, nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transactions for user %s: %w", userID, err)
	}

	if limit <= 0 || len(txns) <= limit {
		return txns, nil, nil
	}
	txns = txns[:limit]
	last := txns[len(txns)-1]
	token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
	return txns, &token, nil
}

// SummarizeByUser aggregates entries created in [from, to).
func (r *PgxLedgerRepository) SummarizeByUser(ctx context.Context, userID string, from, to time.Time) (domain.TransactionStats, error) {
	query := `
		SELECT status, direction, service, COUNT(*), COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY status, direction, service;
	`
	stats := domain.NewTransactionStats()
	rows, err := r.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return stats, fmt.Errorf("failed to summarize transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, direction, service string
			count                      int
			total                      decimal.Decimal
		)
		if err := rows.Scan(&status, &direction, &service, &count, &total); err != nil {
			return stats, fmt.Errorf("failed to scan transaction summary: %w", err)
		}

		st := domain.TransactionStatus(status)
		stats.CountsByStatus[st] += count
		if st != domain.StatusCompleted {
			continue
		}
		if domain.Direction(direction) == domain.Credit {
			stats.TotalCredited = stats.TotalCredited.Add(total)
			continue
		}
		stats.TotalDebited = stats.TotalDebited.Add(total)
		stats.DebitByService[service] = stats.DebitByService[service].Add(total)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("error iterating transaction summary: %w", err)
	}
	return stats, nil
}

// DailyTotals buckets completed entries per UTC day, zero filled by generate_series.
func (r *PgxLedgerRepository) DailyTotals(ctx context.Context, userID string, from, to time.Time) ([]domain.TrendPoint, error) {
	query := `
		SELECT d.day,
			COALESCE(SUM(t.amount) FILTER (WHERE t.direction = 'CREDIT'), 0) AS credited,
			COALESCE(SUM(t.amount) FILTER (WHERE t.direction = 'DEBIT'), 0) AS debited
		FROM generate_series(
			date_trunc('day', $2::timestamptz AT TIME ZONE 'UTC'),
			date_trunc('day', $3::timestamptz AT TIME ZONE 'UTC'),
			interval '1 day'
		) AS d(day)
		LEFT JOIN wallet_transactions t
			ON t.user_id = $1
			AND t.status = 'COMPLETED'
			AND date_trunc('day', t.created_at AT TIME ZONE 'UTC') = d.day
		GROUP BY d.day
		ORDER BY d.day;
	`
	rows, err := r.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily totals for user %s: %w", userID, err)
	}
	defer rows.Close()

	points := make([]domain.TrendPoint, 0)
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Day, &p.Credited, &p.Debited); err != nil {
			return nil, fmt.Errorf("failed to scan daily totals: %w", err)
		}
		// generate_series over a timestamp without zone yields wall-clock UTC days.
		p.Day = time.Date(p.Day.Year(), p.Day.Month(), p.Day.Day(), 0, 0, 0, 0, time.UTC)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily totals: %w", err)
	}
	return points, nil
}

func scanTransaction(row pgx.Row, transactionID string) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.UserID,
		&m.Direction,
		&m.Amount,
		&m.BalanceAfter,
		&m.Service,
		&m.Status,
		&m.Description,
		&m.OriginalTransactionID,
		&m.CreatedAt,
		&m.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", transactionID))
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	d := mapping.ToDomainTransaction(m)
	return &d, nil
}
