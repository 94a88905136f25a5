// Package gateway translates payment gateway callbacks into ledger payment events.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw webhook body.
const SignatureHeader = "X-Gateway-Signature"

// minorUnitExponent converts gateway minor units (kobo, cents) to wallet amounts.
const minorUnitExponent = -2

// Verifier asks the gateway for the current state of a payment.
type Verifier interface {
	Verify(ctx context.Context, reference string) (domain.PaymentEvent, error)
}

// WebhookPayload is the subset of the gateway callback the ledger reads.
type WebhookPayload struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// WebhookData describes the charge the event is about.
type WebhookData struct {
	Reference       string          `json:"reference"`
	Amount          int64           `json:"amount"` // Minor units
	Status          string          `json:"status"`
	Channel         string          `json:"channel"`
	GatewayResponse string          `json:"gateway_response"`
	Metadata        WebhookMetadata `json:"metadata"`
}

// WebhookMetadata holds the fields we attached when the payment was initiated.
type WebhookMetadata struct {
	UserID string `json:"userId"`
}

// Sign returns the signature the gateway sends for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body in constant time.
// An unset secret never verifies.
func VerifySignature(secret string, body []byte, signature string) error {
	if secret == "" || signature == "" {
		return apperrors.ErrInvalidSignature
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return apperrors.ErrInvalidSignature
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}

// ParseWebhook decodes a verified webhook body.
func ParseWebhook(body []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("malformed webhook payload: %v", err))
	}
	if p.Data.Reference == "" {
		return nil, apperrors.NewValidationError("webhook payload has no reference")
	}
	return &p, nil
}

// MapOutcome folds the gateway's event and status vocabulary into a payment outcome.
// Anything not known to be final is treated as pending so nothing is written for it.
func MapOutcome(event, status string) domain.PaymentOutcome {
	switch strings.ToLower(event) {
	case "charge.success":
		return domain.OutcomeSuccess
	case "charge.failed", "charge.abandoned", "charge.reversed", "charge.dispute.create":
		return domain.OutcomeFailed
	}

	switch strings.ToLower(status) {
	case "success", "successful":
		return domain.OutcomeSuccess
	case "failed", "abandoned", "reversed", "cancelled":
		return domain.OutcomeFailed
	default:
		return domain.OutcomePending
	}
}

// ToPaymentEvent converts the payload into the gateway-neutral event settlement consumes.
func (p WebhookPayload) ToPaymentEvent() (domain.PaymentEvent, error) {
	if p.Data.Metadata.UserID == "" {
		return domain.PaymentEvent{}, apperrors.NewValidationError("webhook payload has no user id")
	}
	if p.Data.Amount <= 0 {
		return domain.PaymentEvent{}, apperrors.ErrInvalidAmount
	}

	event := domain.PaymentEvent{
		Reference: p.Data.Reference,
		UserID:    p.Data.Metadata.UserID,
		Amount:    decimal.New(p.Data.Amount, minorUnitExponent),
		Outcome:   MapOutcome(p.Event, p.Data.Status),
		Method:    p.Data.Channel,
	}
	if event.Outcome == domain.OutcomeFailed {
		event.Reason = p.Data.GatewayResponse
	}
	return event, nil
}
