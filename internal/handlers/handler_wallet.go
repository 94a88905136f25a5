package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// walletHandler handles HTTP requests on the caller's own wallet.
type walletHandler struct {
	wallet  portssvc.WalletSvcFacade
	monitor portssvc.LowBalanceMonitorSvc
}

func newWalletHandler(wallet portssvc.WalletSvcFacade, monitor portssvc.LowBalanceMonitorSvc) *walletHandler {
	return &walletHandler{
		wallet:  wallet,
		monitor: monitor,
	}
}

// registerWalletRoutes registers routes related to the wallet.
func registerWalletRoutes(rg *gin.RouterGroup, wallet portssvc.WalletSvcFacade, monitor portssvc.LowBalanceMonitorSvc) {
	h := newWalletHandler(wallet, monitor)

	w := rg.Group("/wallet")
	{
		w.POST("", h.openWallet)
		w.GET("/balance", h.getBalance)
		w.POST("/topup", h.topUp)
		w.POST("/debit", h.debit)

		w.POST("/pending", h.reservePending)
		w.POST("/pending/:transactionID/complete", h.completePending)
		w.POST("/pending/:transactionID/cancel", h.cancelPending)

		w.GET("/transactions", h.listTransactions)
		w.GET("/transactions/:transactionID", h.getTransaction)
		w.GET("/stats", h.getStats)
		w.GET("/trend", h.getTrend)

		w.GET("/threshold", h.getThreshold)
		w.PUT("/threshold", h.setThreshold)
	}
}

// openWallet godoc
// @Summary Open a wallet
// @Description Creates an empty wallet for the logged-in user. Opening an existing wallet returns it.
// @Tags wallet
// @Produce  json
// @Success 201 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to open wallet"
// @Security BearerAuth
// @Router /wallet [post]
func (h *walletHandler) openWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	account, err := h.wallet.OpenWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to open wallet")
		return
	}
	c.JSON(http.StatusCreated, dto.BalanceResponse{Balance: account.Balance, Currency: account.CurrencyCode})
}

// getBalance godoc
// @Summary Get wallet balance
// @Tags wallet
// @Produce  json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallet/balance [get]
func (h *walletHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	account, err := h.wallet.GetWallet(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Balance: account.Balance, Currency: account.CurrencyCode})
}

// topUp godoc
// @Summary Top up the wallet
// @Description Credits the wallet directly under a new transaction id
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   topup body dto.TopUpRequest true "Top-up details"
// @Success 200 {object} dto.TopUpResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallet/topup [post]
func (h *walletHandler) topUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TopUp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	res, err := h.wallet.TopUp(c.Request.Context(), userID, req.Amount, req.Method)
	if err != nil {
		respondError(c, logger, err, "Failed to top up wallet")
		return
	}
	c.JSON(http.StatusOK, dto.TopUpResponse{TransactionID: res.TransactionID, NewBalance: res.NewBalance})
}

// debit godoc
// @Summary Charge the wallet
// @Description Debits the wallet for a service. Retries must reuse transactionID.
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   debit body dto.DebitRequest true "Debit details"
// @Success 200 {object} dto.MutationResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 402 {object} map[string]string "Insufficient balance"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Failure 409 {object} map[string]string "Transaction ID used by a different entry"
// @Security BearerAuth
// @Router /wallet/debit [post]
func (h *walletHandler) debit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Debit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	res, err := h.wallet.Debit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to debit wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToMutationResponse(res))
}

// reservePending godoc
// @Summary Reserve a pending entry
// @Description Records a pending entry without changing the balance
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   pending body dto.PendingRequest true "Pending entry"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Failure 409 {object} map[string]string "Transaction ID used by a different entry"
// @Security BearerAuth
// @Router /wallet/pending [post]
func (h *walletHandler) reservePending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReservePending", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	res, err := h.wallet.ReservePending(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to reserve pending entry")
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToMutationResponse(res))
}

// completePending godoc
// @Summary Complete a pending entry
// @Tags wallet
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.MutationResponse
// @Failure 402 {object} map[string]string "Insufficient balance"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not pending"
// @Security BearerAuth
// @Router /wallet/pending/{transactionID}/complete [post]
func (h *walletHandler) completePending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	res, err := h.wallet.CompletePending(c.Request.Context(), userID, c.Param("transactionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to complete pending entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToMutationResponse(res))
}

// cancelPending godoc
// @Summary Cancel a pending entry
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   cancel body dto.CancelPendingRequest false "Cancellation reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not pending"
// @Security BearerAuth
// @Router /wallet/pending/{transactionID}/cancel [post]
func (h *walletHandler) cancelPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CancelPendingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for CancelPending", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	txn, err := h.wallet.CancelPending(c.Request.Context(), userID, c.Param("transactionID"), req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel pending entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// listTransactions godoc
// @Summary List wallet transactions
// @Description Newest first, paged with nextToken
// @Tags wallet
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   direction query string false "CREDIT or DEBIT"
// @Param   status query string false "PENDING, COMPLETED or FAILED"
// @Param   service query string false "Service tag"
// @Param   from query string false "RFC3339 lower bound (inclusive)"
// @Param   to query string false "RFC3339 upper bound (exclusive)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	res, err := h.wallet.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, res)
}

// getTransaction godoc
// @Summary Get a wallet transaction
// @Tags wallet
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /wallet/transactions/{transactionID} [get]
func (h *walletHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	txn, err := h.wallet.GetTransaction(c.Request.Context(), userID, c.Param("transactionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// getStats godoc
// @Summary Wallet statistics
// @Description Totals over [from, to), last 30 days by default
// @Tags wallet
// @Produce  json
// @Param   from query string false "RFC3339 lower bound"
// @Param   to query string false "RFC3339 upper bound"
// @Success 200 {object} domain.TransactionStats
// @Failure 400 {object} map[string]string "Invalid range"
// @Security BearerAuth
// @Router /wallet/stats [get]
func (h *walletHandler) getStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.StatsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for Stats", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	stats, err := h.wallet.GetStats(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// getTrend godoc
// @Summary Daily credit and debit totals
// @Tags wallet
// @Produce  json
// @Param   days query int false "Number of days" default(30)
// @Success 200 {array} domain.TrendPoint
// @Failure 400 {object} map[string]string "Invalid days"
// @Security BearerAuth
// @Router /wallet/trend [get]
func (h *walletHandler) getTrend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.TrendParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for Trend", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	points, err := h.wallet.GetTrend(c.Request.Context(), userID, params.Days)
	if err != nil {
		respondError(c, logger, err, "Failed to get trend")
		return
	}
	c.JSON(http.StatusOK, points)
}

// getThreshold godoc
// @Summary Get the low balance threshold
// @Tags wallet
// @Produce  json
// @Success 200 {object} dto.LowBalanceThresholdResponse
// @Security BearerAuth
// @Router /wallet/threshold [get]
func (h *walletHandler) getThreshold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.LowBalanceThresholdResponse{Threshold: h.monitor.Threshold(c.Request.Context(), userID)})
}

// setThreshold godoc
// @Summary Set the low balance threshold
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   threshold body dto.LowBalanceThresholdRequest true "New threshold"
// @Success 200 {object} dto.LowBalanceThresholdResponse
// @Failure 400 {object} map[string]string "Negative threshold"
// @Security BearerAuth
// @Router /wallet/threshold [put]
func (h *walletHandler) setThreshold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LowBalanceThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetThreshold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.monitor.SetThreshold(c.Request.Context(), userID, req.Threshold); err != nil {
		respondError(c, logger, err, "Failed to set threshold")
		return
	}
	c.JSON(http.StatusOK, dto.LowBalanceThresholdResponse{Threshold: req.Threshold})
}
