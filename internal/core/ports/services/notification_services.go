package services

import (
	"context"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
)

// Notifier receives balance change notifications after a mutation commits.
type Notifier interface {
	NotifyBalanceChange(ctx context.Context, change domain.BalanceChange) error
}

// Emailer sends low balance emails.
type Emailer interface {
	SendLowBalanceEmail(ctx context.Context, alert domain.LowBalanceAlert) error
}

// InAppNotifier creates in-app notifications.
type InAppNotifier interface {
	CreateLowBalanceNotification(ctx context.Context, alert domain.LowBalanceAlert) error
}

// NotificationSink bundles every notification collaborator the ledger triggers.
type NotificationSink interface {
	Notifier
	Emailer
	InAppNotifier
}
