package handlers

import (
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/gateway"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type webhookHandler struct {
	secret     string
	settlement portssvc.PaymentSettlementSvc
}

func registerWebhookRoutes(rg *gin.RouterGroup, secret string, settlement portssvc.PaymentSettlementSvc) {
	h := &webhookHandler{secret: secret, settlement: settlement}
	rg.POST("/payments", h.receivePayment)
}

// receivePayment godoc
// @Summary Payment gateway webhook
// @Description Acknowledges immediately and settles in the background. Errors are logged, never returned.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   X-Gateway-Signature header string true "Hex HMAC-SHA512 of the body"
// @Success 200 {object} map[string]string "Received"
// @Failure 401 {object} map[string]string "Invalid signature"
// @Router /webhooks/payments [post]
func (h *webhookHandler) receivePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := gateway.VerifySignature(h.secret, body, c.GetHeader(gateway.SignatureHeader)); err != nil {
		logger.Warn("Rejected webhook with invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// From here on the gateway always gets 200; a retry would not help.
	payload, err := gateway.ParseWebhook(body)
	if err != nil {
		logger.Error("Ignoring malformed webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	event, err := payload.ToPaymentEvent()
	if err != nil {
		logger.Error("Ignoring unusable webhook",
			slog.String("event", payload.Event),
			slog.String("reference", payload.Data.Reference),
			slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	h.settlement.SettleInBackground(c.Request.Context(), event)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
