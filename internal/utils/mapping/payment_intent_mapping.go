package mapping

import (
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/SscSPs/sms_wallet_app/internal/models"
)

// ToModelPaymentIntent converts a domain PaymentIntent to a model PaymentIntent
func ToModelPaymentIntent(d domain.PaymentIntent) models.PaymentIntent {
	return models.PaymentIntent{
		Reference:   d.Reference,
		UserID:      d.UserID,
		Amount:      d.Amount,
		Method:      d.Method,
		Status:      string(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPaymentIntent converts a model PaymentIntent to a domain PaymentIntent
func ToDomainPaymentIntent(m models.PaymentIntent) domain.PaymentIntent {
	return domain.PaymentIntent{
		Reference:   m.Reference,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Method:      m.Method,
		Status:      domain.PaymentIntentStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
