package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeTx stands in for an open unit; the mocked manager decides what commit does.
type fakeTx struct{}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// MockTxManager is a mock type for the TransactionManager interface
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (portsrepo.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx portsrepo.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx portsrepo.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetBalanceForUpdate(ctx context.Context, tx portsrepo.Tx, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, tx portsrepo.Tx, userID string, newBalance decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, tx, userID, newBalance, now)
	return args.Error(0)
}

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, userID, filter, limit, nextToken)
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), token, args.Error(2)
}

func (m *MockLedgerRepository) Insert(ctx context.Context, tx portsrepo.Tx, txn domain.Transaction) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, txn)
	if fn, ok := args.Get(0).(func(domain.Transaction) *domain.Transaction); ok {
		return fn(txn), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindByTransactionIDForUpdate(ctx context.Context, tx portsrepo.Tx, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) UpdatePendingStatus(ctx context.Context, tx portsrepo.Tx, transactionID string, status domain.TransactionStatus, balanceAfter decimal.Decimal, settledAt time.Time) error {
	args := m.Called(ctx, tx, transactionID, status, balanceAfter, settledAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) SummarizeByUser(ctx context.Context, userID string, from, to time.Time) (domain.TransactionStats, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(domain.TransactionStats), args.Error(1)
}

func (m *MockLedgerRepository) DailyTotals(ctx context.Context, userID string, from, to time.Time) ([]domain.TrendPoint, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrendPoint), args.Error(1)
}

// MockIntentRepository is a mock type for the PaymentIntentRepository interface
type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) SaveIntent(ctx context.Context, intent domain.PaymentIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) FindIntentByReference(ctx context.Context, reference string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) UpdateIntentStatus(ctx context.Context, reference string, status domain.PaymentIntentStatus, now time.Time) error {
	args := m.Called(ctx, reference, status, now)
	return args.Error(0)
}

// MockSettingsRepository is a mock type for the SettingsRepository interface
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetUserSetting(ctx context.Context, userID string, key string) (string, error) {
	args := m.Called(ctx, userID, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsRepository) SaveUserSetting(ctx context.Context, userID string, key string, value string) error {
	args := m.Called(ctx, userID, key, value)
	return args.Error(0)
}

// MockMonitor is a mock type for the LowBalanceMonitorSvc interface
type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) AfterDebit(ctx context.Context, userID string, newBalance decimal.Decimal) {
	m.Called(ctx, userID, newBalance)
}

func (m *MockMonitor) Threshold(ctx context.Context, userID string) decimal.Decimal {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal)
}

func (m *MockMonitor) SetThreshold(ctx context.Context, userID string, threshold decimal.Decimal) error {
	args := m.Called(ctx, userID, threshold)
	return args.Error(0)
}

// recordingSink collects notifications; err is returned from every call.
type recordingSink struct {
	mu      sync.Mutex
	err     error
	changes []domain.BalanceChange
	emails  []domain.LowBalanceAlert
	inApp   []domain.LowBalanceAlert
}

func (r *recordingSink) NotifyBalanceChange(_ context.Context, change domain.BalanceChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return r.err
}

func (r *recordingSink) SendLowBalanceEmail(_ context.Context, alert domain.LowBalanceAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, alert)
	return r.err
}

func (r *recordingSink) CreateLowBalanceNotification(_ context.Context, alert domain.LowBalanceAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inApp = append(r.inApp, alert)
	return r.err
}

func (r *recordingSink) balanceChanges() []domain.BalanceChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BalanceChange(nil), r.changes...)
}

// echoInsert makes a mocked Insert return the row it was given.
func echoInsert(t domain.Transaction) *domain.Transaction { return &t }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
