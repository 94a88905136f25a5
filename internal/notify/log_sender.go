package notify

import (
	"context"
	"log/slog"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/middleware"
)

// LogSender writes notifications to the structured log. It stands in for the
// email and in-app delivery services, which live outside the ledger.
type LogSender struct{}

// NewLogSender creates a sender that only logs.
func NewLogSender() *LogSender {
	return &LogSender{}
}

var _ portssvc.NotificationSink = (*LogSender)(nil)

func (LogSender) NotifyBalanceChange(ctx context.Context, change domain.BalanceChange) error {
	middleware.GetLoggerFromCtx(ctx).Info("Balance changed",
		slog.String("user_id", change.UserID),
		slog.String("transaction_id", change.TransactionID),
		slog.String("direction", string(change.Direction)),
		slog.String("amount", change.Amount.String()),
		slog.String("new_balance", change.NewBalance.String()),
		slog.String("service", change.Service))
	return nil
}

func (LogSender) SendLowBalanceEmail(ctx context.Context, alert domain.LowBalanceAlert) error {
	middleware.GetLoggerFromCtx(ctx).Info("Low balance email",
		slog.String("user_id", alert.UserID),
		slog.String("balance", alert.Balance.String()),
		slog.String("threshold", alert.Threshold.String()))
	return nil
}

func (LogSender) CreateLowBalanceNotification(ctx context.Context, alert domain.LowBalanceAlert) error {
	middleware.GetLoggerFromCtx(ctx).Info("Low balance in-app notification",
		slog.String("user_id", alert.UserID),
		slog.String("balance", alert.Balance.String()),
		slog.String("threshold", alert.Threshold.String()))
	return nil
}
