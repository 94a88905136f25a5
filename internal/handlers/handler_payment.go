package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/dto"
	"github.com/SscSPs/sms_wallet_app/internal/gateway"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles payments the user starts and verifies.
type paymentHandler struct {
	settlement portssvc.PaymentSettlementSvc
	verifier   gateway.Verifier // Optional; when nil the client-reported result is settled
}

func newPaymentHandler(settlement portssvc.PaymentSettlementSvc, verifier gateway.Verifier) *paymentHandler {
	return &paymentHandler{settlement: settlement, verifier: verifier}
}

func registerPaymentRoutes(rg *gin.RouterGroup, settlement portssvc.PaymentSettlementSvc, verifier gateway.Verifier) {
	h := newPaymentHandler(settlement, verifier)

	payments := rg.Group("/payments")
	{
		payments.POST("/initiate", h.initiatePayment)
		payments.POST("/verify", h.verifyPayment)
	}
}

// initiatePayment godoc
// @Summary Start a gateway payment
// @Description Records the payment intent and returns the reference to hand to the gateway
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.InitiatePaymentRequest true "Payment details"
// @Success 201 {object} dto.InitiatePaymentResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Security BearerAuth
// @Router /payments/initiate [post]
func (h *paymentHandler) initiatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	intent, err := h.settlement.InitiatePayment(c.Request.Context(), userID, req.Amount, req.Method)
	if err != nil {
		respondError(c, logger, err, "Failed to initiate payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInitiatePaymentResponse(intent))
}

// verifyPayment godoc
// @Summary Verify and settle a payment
// @Description Settles the gateway result for a reference. Safe to repeat.
// @Description When the server runs with a gateway verifier the outcome and amount come from the gateway.
// @Description Without one the reported outcome is settled as sent, so only trusted clients may call this.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.VerifyPaymentRequest true "Verification result"
// @Success 200 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Amount mismatch or invalid request"
// @Failure 403 {object} map[string]string "Payment belongs to another user"
// @Failure 404 {object} map[string]string "Unknown payment reference"
// @Security BearerAuth
// @Router /payments/verify [post]
func (h *paymentHandler) verifyPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for VerifyPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	event := domain.PaymentEvent{
		Reference: req.Reference,
		Amount:    req.Amount,
		Outcome:   domain.PaymentOutcome(req.Outcome),
		Method:    req.Method,
		Reason:    req.Reason,
	}
	if h.verifier != nil {
		verified, err := h.verifier.Verify(c.Request.Context(), req.Reference)
		if err != nil {
			respondError(c, logger, err, "Failed to verify payment with gateway")
			return
		}
		event = verified
	}
	// The caller can only settle payments made for their own wallet.
	event.UserID = userID

	res, err := h.settlement.Settle(c.Request.Context(), event)
	if err != nil {
		respondError(c, logger, err, "Failed to settle payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponse(res))
}
