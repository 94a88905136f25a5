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
)

type PgxPaymentIntentRepository struct {
	BaseRepository
}

func newPgxPaymentIntentRepository(pool *pgxpool.Pool) portsrepo.PaymentIntentRepository {
	return &PgxPaymentIntentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentIntentRepository = (*PgxPaymentIntentRepository)(nil)

func (r *PgxPaymentIntentRepository) SaveIntent(ctx context.Context, intent domain.PaymentIntent) error {
	m := mapping.ToModelPaymentIntent(intent)
	query := `
		INSERT INTO payment_intents (reference, user_id, amount, method, status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query, m.Reference, m.UserID, m.Amount, m.Method, m.Status, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment reference %s", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to save payment intent %s: %w", m.Reference, err)
	}
	return nil
}

func (r *PgxPaymentIntentRepository) FindIntentByReference(ctx context.Context, reference string) (*domain.PaymentIntent, error) {
	query := `
		SELECT reference, user_id, amount, method, status, created_at, last_updated_at
		FROM payment_intents
		WHERE reference = $1;
	`
	var m models.PaymentIntent
	err := r.Pool.QueryRow(ctx, query, reference).Scan(
		&m.Reference,
		&m.UserID,
		&m.Amount,
		&m.Method,
		&m.Status,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment intent %s: %w", reference, err)
	}
	d := mapping.ToDomainPaymentIntent(m)
	return &d, nil
}

func (r *PgxPaymentIntentRepository) UpdateIntentStatus(ctx context.Context, reference string, status domain.PaymentIntentStatus, now time.Time) error {
	query := `UPDATE payment_intents SET status = $1, last_updated_at = $2 WHERE reference = $3;`
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), now, reference)
	if err != nil {
		return fmt.Errorf("failed to update payment intent %s: %w", reference, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
