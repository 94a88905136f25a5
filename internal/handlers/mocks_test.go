package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// generateTestToken creates a signed JWT for userID.
func generateTestToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    "wallet-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockWalletService) GetTransaction(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockWalletService) OpenWallet(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockWalletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.TopUpResult, error) {
	args := m.Called(ctx, userID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopUpResult), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID string, req dto.DebitRequest) (*domain.MutationResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}

func (m *MockWalletService) GetStats(ctx context.Context, userID string, params dto.StatsParams) (*domain.TransactionStats, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionStats), args.Error(1)
}

func (m *MockWalletService) GetTrend(ctx context.Context, userID string, days int) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

func (m *MockWalletService) mutation(args mock.Arguments) (*domain.MutationResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MutationResult), args.Error(1)
}

func (m *MockWalletService) ReservePending(ctx context.Context, userID string, req dto.PendingRequest) (*domain.MutationResult, error) {
	return m.mutation(m.Called(ctx, userID, req))
}

func (m *MockWalletService) CompletePending(ctx context.Context, userID string, transactionID string) (*domain.MutationResult, error) {
	return m.mutation(m.Called(ctx, userID, transactionID))
}

func (m *MockWalletService) CancelPending(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Mock LowBalanceMonitor ---
type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) AfterDebit(ctx context.Context, userID string, newBalance decimal.Decimal) {
	m.Called(ctx, userID, newBalance)
}

func (m *MockMonitor) Threshold(ctx context.Context, userID string) decimal.Decimal {
	return m.Called(ctx, userID).Get(0).(decimal.Decimal)
}

func (m *MockMonitor) SetThreshold(ctx context.Context, userID string, threshold decimal.Decimal) error {
	return m.Called(ctx, userID, threshold).Error(0)
}

var _ portssvc.LowBalanceMonitorSvc = (*MockMonitor)(nil)

// --- Mock Settlement ---
type MockSettlement struct {
	mock.Mock
}

func (m *MockSettlement) InitiatePayment(ctx context.Context, userID string, amount decimal.Decimal, method string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, userID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockSettlement) Settle(ctx context.Context, event domain.PaymentEvent) (*domain.SettlementResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementResult), args.Error(1)
}

func (m *MockSettlement) SettleInBackground(ctx context.Context, event domain.PaymentEvent) {
	m.Called(ctx, event)
}

func (m *MockSettlement) Wait() {}

var _ portssvc.PaymentSettlementSvc = (*MockSettlement)(nil)

// --- Mock gateway Verifier ---
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, reference string) (domain.PaymentEvent, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(domain.PaymentEvent), args.Error(1)
}
