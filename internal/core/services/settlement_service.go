package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const defaultSettleTimeout = 30 * time.Second

type settlementService struct {
	BaseService
	mutator       portssvc.BalanceMutatorSvc
	ledgerRepo    portsrepo.LedgerReader
	intentRepo    portsrepo.PaymentIntentRepository
	settleTimeout time.Duration

	// inflight collapses concurrent settlements of the same event inside this process.
	// Across processes the ledger's unique transaction id does the same job.
	inflight   singleflight.Group
	background sync.WaitGroup
}

// SettlementOption is a functional option for configuring the settlement service
type SettlementOption func(*settlementService)

// WithSettleTimeout bounds each background settlement
func WithSettleTimeout(d time.Duration) SettlementOption {
	return func(s *settlementService) {
		if d > 0 {
			s.settleTimeout = d
		}
	}
}

// WithSettlementClock overrides the time source
func WithSettlementClock(now func() time.Time) SettlementOption {
	return func(s *settlementService) {
		s.Now = now
	}
}

// NewSettlementService creates a new payment settlement service
func NewSettlementService(
	mutator portssvc.BalanceMutatorSvc,
	ledgerRepo portsrepo.LedgerReader,
	intentRepo portsrepo.PaymentIntentRepository,
	options ...SettlementOption,
) portssvc.PaymentSettlementSvc {
	svc := &settlementService{
		mutator:       mutator,
		ledgerRepo:    ledgerRepo,
		intentRepo:    intentRepo,
		settleTimeout: defaultSettleTimeout,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.PaymentSettlementSvc = (*settlementService)(nil)

func (s *settlementService) InitiatePayment(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	now := s.now()
	intent := domain.PaymentIntent{
		Reference: strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Status:    domain.IntentPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.intentRepo.SaveIntent(ctx, intent); err != nil {
		s.LogError(ctx, err, "Failed to save payment intent", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment intent created",
		slog.String("user_id", userID),
		slog.String("reference", intent.Reference),
		slog.String("amount", amount.String()))

	return &intent, nil
}

func (s *settlementService) Settle(ctx context.Context, event domain.PaymentEvent) (*domain.SettlementResult, error) {
	if event.Reference == "" {
		return nil, apperrors.NewValidationError("payment reference is required")
	}
	if !event.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	// The key covers every input so a forged event never shares a verified one's result.
	key := strings.Join([]string{event.Reference, event.UserID, event.Amount.String(), string(event.Outcome)}, "|")
	leader := false
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		leader = true
		// Followers share this run, so it must not end with the leader's request.
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settleTimeout)
		defer cancel()
		return s.settle(flightCtx, event)
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the result value.
	res := *v.(*domain.SettlementResult)
	if !leader && res.Processed {
		// Only the leader wrote; everyone else observed its write.
		res.AlreadyProcessed = true
	}
	return &res, nil
}

func (s *settlementService) settle(ctx context.Context, event domain.PaymentEvent) (*domain.SettlementResult, error) {
	transactionID := event.TransactionID()
	logAttrs := []any{
		slog.String("reference", event.Reference),
		slog.String("user_id", event.UserID),
		slog.String("outcome", string(event.Outcome)),
	}

	intent, err := s.intentRepo.FindIntentByReference(ctx, event.Reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Settlement for unknown payment reference rejected", logAttrs...)
			return nil, apperrors.ErrPaymentIntentNotFound
		}
		s.LogError(ctx, err, "Failed to load payment intent", logAttrs...)
		return nil, err
	}
	if intent.UserID != event.UserID {
		s.LogWarn(ctx, "Settlement user does not own payment intent", logAttrs...)
		return nil, apperrors.ErrUserMismatch
	}
	if !intent.Amount.Equal(event.Amount) {
		s.LogWarn(ctx, "Settlement amount does not match payment intent",
			append(logAttrs, slog.String("expected", intent.Amount.String()), slog.String("got", event.Amount.String()))...)
		return nil, apperrors.ErrAmountMismatch
	}

	req := domain.MutationRequest{
		UserID:        event.UserID,
		TransactionID: transactionID,
		Direction:     domain.Credit,
		Amount:        event.Amount,
		Service:       domain.ServicePayment,
	}

	existing, err := s.ledgerRepo.FindByTransactionID(ctx, transactionID)
	if err == nil {
		if !req.Matches(*existing) {
			s.LogWarn(ctx, "Payment transaction id held by a different entry", logAttrs...)
			return nil, apperrors.ErrTransactionIDTaken
		}
		s.LogInfo(ctx, "Payment already settled", logAttrs...)
		return alreadyProcessed(existing), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up settlement", logAttrs...)
		return nil, err
	}

	switch event.Outcome {
	case domain.OutcomeSuccess:
		req.Description = describePayment("Wallet funded", event.Method)
		res, err := s.mutator.ApplyMutation(ctx, req)
		if err != nil {
			s.LogError(ctx, err, "Failed to credit payment", logAttrs...)
			return nil, err
		}
		if res.Duplicate {
			return alreadyProcessed(&res.Transaction), nil
		}
		s.markIntent(ctx, event.Reference, domain.IntentCompleted)
		newBalance := res.NewBalance
		return &domain.SettlementResult{
			Success:       true,
			Processed:     true,
			TransactionID: transactionID,
			Status:        domain.StatusCompleted,
			NewBalance:    &newBalance,
		}, nil

	case domain.OutcomeFailed:
		req.Description = describePayment("Payment failed", event.Method)
		if event.Reason != "" {
			req.Description += ": " + event.Reason
		}
		res, err := s.mutator.RecordFailed(ctx, req)
		if err != nil {
			s.LogError(ctx, err, "Failed to record failed payment", logAttrs...)
			return nil, err
		}
		if res.Duplicate {
			return alreadyProcessed(&res.Transaction), nil
		}
		s.markIntent(ctx, event.Reference, domain.IntentFailed)
		return &domain.SettlementResult{
			Processed:     true,
			TransactionID: transactionID,
			Status:        domain.StatusFailed,
		}, nil

	case domain.OutcomePending:
		s.LogInfo(ctx, "Payment still pending, nothing recorded", logAttrs...)
		return &domain.SettlementResult{
			TransactionID: transactionID,
			Status:        domain.StatusPending,
		}, nil

	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment outcome %q", event.Outcome))
	}
}

func (s *settlementService) SettleInBackground(ctx context.Context, event domain.PaymentEvent) {
	logger := s.GetLogger(ctx).With(
		slog.String("reference", event.Reference),
		slog.String("outcome", string(event.Outcome)))

	// The caller's request ends before settlement does.
	bgCtx := middleware.WithLogger(context.WithoutCancel(ctx), logger)

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		settleCtx, cancel := context.WithTimeout(bgCtx, s.settleTimeout)
		defer cancel()

		res, err := s.Settle(settleCtx, event)
		if err != nil {
			// Terminal for this event; reconciliation is manual.
			logger.Error("Background settlement failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("Background settlement finished",
			slog.Bool("processed", res.Processed),
			slog.Bool("already_processed", res.AlreadyProcessed),
			slog.String("transaction_id", res.TransactionID))
	}()
}

func (s *settlementService) Wait() {
	s.background.Wait()
}

// markIntent records the final intent state. The ledger is the source of truth, so failures are only logged.
func (s *settlementService) markIntent(ctx context.Context, reference string, status domain.PaymentIntentStatus) {
	if err := s.intentRepo.UpdateIntentStatus(ctx, reference, status, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to update payment intent status",
			slog.String("reference", reference),
			slog.String("status", string(status)))
	}
}

func alreadyProcessed(existing *domain.Transaction) *domain.SettlementResult {
	res := &domain.SettlementResult{
		Success:          existing.Status == domain.StatusCompleted,
		Processed:        existing.Status != domain.StatusPending,
		AlreadyProcessed: true,
		TransactionID:    existing.TransactionID,
		Status:           existing.Status,
	}
	if existing.Status == domain.StatusCompleted {
		newBalance := existing.BalanceAfter
		res.NewBalance = &newBalance
	}
	return res
}

func describePayment(prefix, method string) string {
	if method == "" {
		return prefix
	}
	return prefix + " via " + method
}
