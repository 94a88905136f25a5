package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	topUpTransactionPrefix = "TOP-"
	debitTransactionPrefix = "DBT-"

	defaultPageLimit   = 20
	defaultStatsWindow = 30 * 24 * time.Hour
)

// walletService implements the WalletSvcFacade interface
type walletService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	mutator     portssvc.BalanceMutatorSvc
	monitor     portssvc.LowBalanceMonitorSvc
	currency    string
}

// WalletOption is a functional option for configuring the wallet service
type WalletOption func(*walletService)

// WithLowBalanceMonitor runs the monitor after every debit
func WithLowBalanceMonitor(monitor portssvc.LowBalanceMonitorSvc) WalletOption {
	return func(s *walletService) {
		s.monitor = monitor
	}
}

// WithWalletClock overrides the time source
func WithWalletClock(now func() time.Time) WalletOption {
	return func(s *walletService) {
		s.Now = now
	}
}

// NewWalletService creates a new wallet service with the provided options
func NewWalletService(
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	mutator portssvc.BalanceMutatorSvc,
	currency string,
	options ...WalletOption,
) portssvc.WalletSvcFacade {
	svc := &walletService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		mutator:     mutator,
		currency:    currency,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure walletService implements the WalletSvcFacade interface
var _ portssvc.WalletSvcFacade = (*walletService)(nil)

func (s *walletService) GetWallet(ctx context.Context, userID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByUserID(ctx, userID)
}

func (s *walletService) GetTransaction(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return txn, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	txns, nextToken, err := s.ledgerRepo.ListByUser(ctx, userID, params.Filter(), limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("user_id", userID))
		return nil, err
	}

	resp := dto.ToListTransactionsResponse(txns, limit, nextToken)
	return &resp, nil
}

func (s *walletService) OpenWallet(ctx context.Context, userID string) (*domain.Account, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	now := s.now()
	account := domain.Account{
		UserID:       userID,
		Balance:      decimal.Zero,
		CurrencyCode: s.currency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Opening twice returns the wallet that is already there.
			return s.accountRepo.FindAccountByUserID(ctx, userID)
		}
		s.LogError(ctx, err, "Failed to open wallet", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Wallet opened", slog.String("user_id", userID), slog.String("currency", s.currency))
	return &account, nil
}

func (s *walletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.TopUpResult, error) {
	res, err := s.mutator.ApplyMutation(ctx, domain.MutationRequest{
		UserID:        userID,
		TransactionID: topUpTransactionPrefix + uuid.NewString(),
		Direction:     domain.Credit,
		Amount:        amount,
		Service:       domain.ServiceTopUp,
		Description:   describePayment("Wallet top-up", method),
	})
	if err != nil {
		return nil, err
	}

	return &domain.TopUpResult{
		TransactionID: res.Transaction.TransactionID,
		NewBalance:    res.NewBalance,
		CreatedAt:     res.Transaction.CreatedAt,
	}, nil
}

func (s *walletService) Debit(ctx context.Context, userID string, req dto.DebitRequest) (*domain.MutationResult, error) {
	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = debitTransactionPrefix + uuid.NewString()
	} else if err := checkClientTransactionID(transactionID); err != nil {
		return nil, err
	}

	res, err := s.mutator.ApplyMutation(ctx, domain.MutationRequest{
		UserID:        userID,
		TransactionID: transactionID,
		Direction:     domain.Debit,
		Amount:        req.Amount,
		Service:       req.Service,
		Description:   req.Description,
	})
	if err != nil {
		return nil, err
	}

	// A replayed debit already ran the check when it first committed.
	if !res.Duplicate {
		s.afterDebit(ctx, userID, res.NewBalance)
	}

	return res, nil
}

func (s *walletService) ReservePending(ctx context.Context, userID string, req dto.PendingRequest) (*domain.MutationResult, error) {
	if err := checkClientTransactionID(req.TransactionID); err != nil {
		return nil, err
	}

	return s.mutator.ReservePending(ctx, domain.MutationRequest{
		UserID:        userID,
		TransactionID: req.TransactionID,
		Direction:     req.Direction,
		Amount:        req.Amount,
		Service:       req.Service,
		Description:   req.Description,
	})
}

func (s *walletService) CompletePending(ctx context.Context, userID string, transactionID string) (*domain.MutationResult, error) {
	if _, err := s.GetTransaction(ctx, userID, transactionID); err != nil {
		return nil, err
	}

	res, err := s.mutator.CompletePending(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if res.Transaction.Direction == domain.Debit {
		s.afterDebit(ctx, userID, res.NewBalance)
	}
	return res, nil
}

func (s *walletService) CancelPending(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, error) {
	if _, err := s.GetTransaction(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	return s.mutator.CancelPending(ctx, transactionID, reason)
}

func (s *walletService) afterDebit(ctx context.Context, userID string, newBalance decimal.Decimal) {
	if s.monitor != nil {
		s.monitor.AfterDebit(ctx, userID, newBalance)
	}
}

// checkClientTransactionID keeps callers out of the id space the wallet generates itself,
// so a client id can never claim a payment's ledger entry ahead of its settlement.
func checkClientTransactionID(transactionID string) error {
	for _, prefix := range []string{domain.PaymentTransactionPrefix, topUpTransactionPrefix} {
		if strings.HasPrefix(transactionID, prefix) {
			return apperrors.NewValidationError("transaction ID prefix " + prefix + " is reserved")
		}
	}
	return nil
}

func (s *walletService) GetStats(ctx context.Context, userID string, params dto.StatsParams) (*domain.TransactionStats, error) {
	to := s.now()
	if params.To != nil {
		to = params.To.UTC()
	}
	from := to.Add(-defaultStatsWindow)
	if params.From != nil {
		from = params.From.UTC()
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError("from must not be after to")
	}

	stats, err := s.ledgerRepo.SummarizeByUser(ctx, userID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarise transactions", slog.String("user_id", userID))
		return nil, err
	}
	return &stats, nil
}

func (s *walletService) GetTrend(ctx context.Context, userID string, days int) ([]domain.TrendPoint, error) {
	if days <= 0 {
		return nil, apperrors.NewValidationError("days must be positive")
	}

	to := s.now()
	from := to.AddDate(0, 0, -(days - 1))

	points, err := s.ledgerRepo.DailyTotals(ctx, userID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load daily totals", slog.String("user_id", userID))
		return nil, err
	}
	return points, nil
}
