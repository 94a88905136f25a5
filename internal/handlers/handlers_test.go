package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/SscSPs/sms_wallet_app/internal/gateway"
	"github.com/SscSPs/sms_wallet_app/internal/handlers"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/SscSPs/sms_wallet_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testWebhookSecret = "whsec_test"

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	wallet     *MockWalletService
	monitor    *MockMonitor
	settlement *MockSettlement
	userID     string
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(middleware.RegisterValidators())

	suite.wallet = new(MockWalletService)
	suite.monitor = new(MockMonitor)
	suite.settlement = new(MockSettlement)
	suite.userID = "user-1"

	cfg := &config.Config{
		JWTSecret:            testJWTSecret,
		PaymentWebhookSecret: testWebhookSecret,
		IsProduction:         true,
	}
	container := &portssvc.ServiceContainer{
		Settlement: suite.settlement,
		Monitor:    suite.monitor,
		Wallet:     suite.wallet,
	}

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(nil))
	handlers.RegisterRoutes(suite.router, cfg, container, nil)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.wallet.AssertExpectations(suite.T())
	suite.monitor.AssertExpectations(suite.T())
	suite.settlement.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite.T(), suite.userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) errorBody(w *httptest.ResponseRecorder) string {
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestHealth() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestRequiresAuth() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestOpenWalletAndBalance() {
	account := &domain.Account{UserID: suite.userID, Balance: decimal.NewFromInt(150), CurrencyCode: "NGN"}
	suite.wallet.On("OpenWallet", mock.Anything, suite.userID).Return(account, nil).Once()
	suite.wallet.On("GetWallet", mock.Anything, suite.userID).Return(account, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet", nil)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/wallet/balance", nil)
	suite.Equal(http.StatusOK, w.Code)
	var res dto.BalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.True(decimal.NewFromInt(150).Equal(res.Balance))
	suite.Equal("NGN", res.Currency)
}

func (suite *HandlerTestSuite) TestGetBalance_NoWallet() {
	suite.wallet.On("GetWallet", mock.Anything, suite.userID).Return(nil, apperrors.ErrAccountNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/balance", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestTopUp() {
	suite.wallet.On("TopUp", mock.Anything, suite.userID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("50.25"))
	}), "card").Return(&domain.TopUpResult{TransactionID: "TOP-1", NewBalance: decimal.RequireFromString("150.25")}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/topup", gin.H{"amount": "50.25", "method": "card"})
	suite.Equal(http.StatusOK, w.Code)

	var res dto.TopUpResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("TOP-1", res.TransactionID)
}

func (suite *HandlerTestSuite) TestTopUp_InvalidAmount() {
	for _, amount := range []string{"0", "-5"} {
		w := suite.do(http.MethodPost, "/api/v1/wallet/topup", gin.H{"amount": amount, "method": "card"})
		suite.Equal(http.StatusBadRequest, w.Code, amount)
	}
}

func (suite *HandlerTestSuite) TestDebit_InsufficientBalance() {
	suite.wallet.On("Debit", mock.Anything, suite.userID, mock.MatchedBy(func(r dto.DebitRequest) bool {
		return r.Service == domain.ServiceSMS && r.TransactionID == "sms-batch-1"
	})).Return(nil, apperrors.ErrInsufficientBalance).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/debit", gin.H{
		"amount": "200", "service": domain.ServiceSMS, "transactionID": "sms-batch-1",
	})
	suite.Equal(http.StatusPaymentRequired, w.Code)
	suite.Equal(apperrors.ErrInsufficientBalance.Error(), suite.errorBody(w))
}

func (suite *HandlerTestSuite) TestDebit_Duplicate() {
	existing := domain.Transaction{TransactionID: "sms-batch-1", UserID: suite.userID, Direction: domain.Debit,
		Amount: decimal.NewFromInt(5), BalanceAfter: decimal.NewFromInt(95), Status: domain.StatusCompleted}
	suite.wallet.On("Debit", mock.Anything, suite.userID, mock.Anything).
		Return(&domain.MutationResult{Transaction: existing, NewBalance: existing.BalanceAfter, Duplicate: true}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/debit", gin.H{
		"amount": "5", "service": domain.ServiceSMS, "transactionID": "sms-batch-1",
	})
	suite.Equal(http.StatusOK, w.Code)

	var res dto.MutationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.True(res.Duplicate)
	suite.Equal("sms-batch-1", res.Transaction.TransactionID)
}

func (suite *HandlerTestSuite) TestReservePending() {
	row := domain.Transaction{TransactionID: "voice-1", UserID: suite.userID, Status: domain.StatusPending}
	suite.wallet.On("ReservePending", mock.Anything, suite.userID, mock.MatchedBy(func(r dto.PendingRequest) bool {
		return r.TransactionID == "voice-1" && r.Direction == domain.Debit && r.Amount.Equal(decimal.RequireFromString("3"))
	})).Return(&domain.MutationResult{Transaction: row}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending", gin.H{
		"transactionID": "voice-1", "direction": "DEBIT", "amount": "3", "service": domain.ServiceVoice,
	})
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestReservePending_IDUsedByAnotherEntry() {
	suite.wallet.On("ReservePending", mock.Anything, suite.userID, mock.Anything).
		Return(nil, apperrors.ErrTransactionIDTaken).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending", gin.H{
		"transactionID": "voice-1", "direction": "DEBIT", "amount": "3", "service": domain.ServiceVoice,
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestDebit_IDUsedByAnotherEntry() {
	suite.wallet.On("Debit", mock.Anything, suite.userID, mock.Anything).
		Return(nil, apperrors.ErrTransactionIDTaken).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/debit", gin.H{
		"amount": "5", "service": domain.ServiceSMS, "transactionID": "shared-1",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCompletePending() {
	suite.wallet.On("CompletePending", mock.Anything, suite.userID, "voice-1").Return(&domain.MutationResult{
		Transaction: domain.Transaction{TransactionID: "voice-1", UserID: suite.userID, Status: domain.StatusCompleted},
		NewBalance:  decimal.RequireFromString("97"),
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending/voice-1/complete", nil)
	suite.Equal(http.StatusOK, w.Code)

	var res dto.MutationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.True(decimal.RequireFromString("97").Equal(res.NewBalance))
}

func (suite *HandlerTestSuite) TestCompletePending_NotPending() {
	suite.wallet.On("CompletePending", mock.Anything, suite.userID, "voice-1").
		Return(nil, apperrors.ErrInvalidStatusTransition).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending/voice-1/complete", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestCompletePending_NotOwner() {
	suite.wallet.On("CompletePending", mock.Anything, suite.userID, "voice-1").
		Return(nil, apperrors.NewNotFoundError("transaction voice-1 not found")).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending/voice-1/complete", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestCancelPending() {
	suite.wallet.On("CancelPending", mock.Anything, suite.userID, "voice-1", "call dropped").
		Return(&domain.Transaction{TransactionID: "voice-1", UserID: suite.userID, Status: domain.StatusFailed}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/wallet/pending/voice-1/cancel", gin.H{"reason": "call dropped"})
	suite.Equal(http.StatusOK, w.Code)

	var res dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(string(domain.StatusFailed), res.Status)
}

func (suite *HandlerTestSuite) TestListTransactions() {
	token := "abc"
	expected := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{{TransactionID: "t2"}, {TransactionID: "t1"}},
		Pagination:   dto.Pagination{Limit: 2, NextToken: &token, HasMore: true},
	}
	suite.wallet.On("ListTransactions", mock.Anything, suite.userID, mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.Limit == 2 && p.Direction == "DEBIT" && p.Service == "sms"
	})).Return(expected, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/transactions?limit=2&direction=DEBIT&service=sms", nil)
	suite.Equal(http.StatusOK, w.Code)

	var res dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Len(res.Transactions, 2)
	suite.True(res.Pagination.HasMore)
}

func (suite *HandlerTestSuite) TestListTransactions_BadQuery() {
	w := suite.do(http.MethodGet, "/api/v1/wallet/transactions?direction=SIDEWAYS", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGetTransaction_NotFound() {
	suite.wallet.On("GetTransaction", mock.Anything, suite.userID, "nope").
		Return(nil, apperrors.NewNotFoundError("transaction nope not found")).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/transactions/nope", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestStatsAndTrend() {
	stats := domain.NewTransactionStats()
	stats.TotalCredited = decimal.NewFromInt(100)
	suite.wallet.On("GetStats", mock.Anything, suite.userID, mock.Anything).Return(&stats, nil).Once()
	suite.wallet.On("GetTrend", mock.Anything, suite.userID, 7).Return([]domain.TrendPoint{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/stats", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/wallet/trend?days=7", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestStats_InvalidRange() {
	suite.wallet.On("GetStats", mock.Anything, suite.userID, mock.Anything).
		Return(nil, apperrors.NewValidationError("from must be before to")).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/stats?from=2024-02-01T00:00:00Z&to=2024-01-01T00:00:00Z", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestThreshold() {
	suite.monitor.On("Threshold", mock.Anything, suite.userID).Return(decimal.NewFromInt(500)).Once()
	suite.monitor.On("SetThreshold", mock.Anything, suite.userID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(1000))
	})).Return(nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/wallet/threshold", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/wallet/threshold", gin.H{"threshold": "1000"})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPut, "/api/v1/wallet/threshold", gin.H{"threshold": "-1"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestInitiatePayment() {
	suite.settlement.On("InitiatePayment", mock.Anything, suite.userID, mock.Anything, "card").
		Return(&domain.PaymentIntent{Reference: "ref1", Amount: decimal.NewFromInt(50), Method: "card"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/payments/initiate", gin.H{"amount": "50", "method": "card"})
	suite.Equal(http.StatusCreated, w.Code)

	var res dto.InitiatePaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("ref1", res.Reference)
}

func (suite *HandlerTestSuite) TestVerifyPayment() {
	newBalance := decimal.NewFromInt(150)
	suite.settlement.On("Settle", mock.Anything, mock.MatchedBy(func(e domain.PaymentEvent) bool {
		return e.UserID == suite.userID && e.Reference == "ref1" && e.Outcome == domain.OutcomeSuccess
	})).Return(&domain.SettlementResult{Success: true, Processed: true, TransactionID: "PMT-ref1",
		Status: domain.StatusCompleted, NewBalance: &newBalance}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/payments/verify", gin.H{"reference": "ref1", "amount": "50", "outcome": "success"})
	suite.Equal(http.StatusOK, w.Code)

	var res dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.True(res.Success)
	suite.Equal("PMT-ref1", res.TransactionID)
}

func (suite *HandlerTestSuite) TestVerifyPayment_GatewayVerifierOverridesClient() {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "ref1").Return(domain.PaymentEvent{
		Reference: "ref1", UserID: "someone-else", Amount: decimal.NewFromInt(50), Outcome: domain.OutcomeFailed, Reason: "declined",
	}, nil).Once()

	router := gin.New()
	router.Use(middleware.StructuredLoggingMiddleware(nil))
	handlers.RegisterRoutes(router, &config.Config{JWTSecret: testJWTSecret, IsProduction: true},
		&portssvc.ServiceContainer{Settlement: suite.settlement, Wallet: suite.wallet, Monitor: suite.monitor},
		nil, handlers.WithPaymentVerifier(verifier))

	suite.settlement.On("Settle", mock.Anything, mock.MatchedBy(func(e domain.PaymentEvent) bool {
		return e.UserID == suite.userID && e.Outcome == domain.OutcomeFailed && e.Reason == "declined"
	})).Return(&domain.SettlementResult{Processed: true, TransactionID: "PMT-ref1", Status: domain.StatusFailed}, nil).Once()

	body, err := json.Marshal(gin.H{"reference": "ref1", "amount": "50", "outcome": "success"})
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+generateTestToken(suite.T(), suite.userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var res dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.False(res.Success)
	verifier.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestVerifyPayment_Errors() {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.ErrUserMismatch, http.StatusForbidden},
		{apperrors.ErrAmountMismatch, http.StatusBadRequest},
		{apperrors.ErrPaymentIntentNotFound, http.StatusNotFound},
		{assertErr("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		suite.settlement.On("Settle", mock.Anything, mock.Anything).Return(nil, tt.err).Once()
		w := suite.do(http.MethodPost, "/api/v1/payments/verify", gin.H{"reference": "ref1", "amount": "50", "outcome": "failed"})
		suite.Equal(tt.status, w.Code, tt.err.Error())
	}
}

func (suite *HandlerTestSuite) postWebhook(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(gateway.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) TestWebhook_SettlesInBackground() {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref1","amount":5000,"status":"success","channel":"card","metadata":{"userId":"user-1"}}}`)
	suite.settlement.On("SettleInBackground", mock.Anything, mock.MatchedBy(func(e domain.PaymentEvent) bool {
		return e.Reference == "ref1" && e.UserID == "user-1" && e.Outcome == domain.OutcomeSuccess &&
			e.Amount.Equal(decimal.NewFromInt(50))
	})).Return().Once()

	w := suite.postWebhook(body, gateway.Sign(testWebhookSecret, body))
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestWebhook_BadSignature() {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref1","amount":5000,"metadata":{"userId":"user-1"}}}`)

	w := suite.postWebhook(body, gateway.Sign("wrong-secret", body))
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.postWebhook(body, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestWebhook_MalformedIsAcknowledged() {
	body := []byte(`{"event":"charge.success","data":{"amount":5000}}`)

	w := suite.postWebhook(body, gateway.Sign(testWebhookSecret, body))
	suite.Equal(http.StatusOK, w.Code)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

// --- Run Test Suite ---
func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
