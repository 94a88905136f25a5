package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type lowBalanceMonitor struct {
	BaseService
	settingsRepo     portsrepo.SettingsRepository
	emailer          portssvc.Emailer
	inApp            portssvc.InAppNotifier
	defaultThreshold decimal.Decimal
}

// NewLowBalanceMonitor creates the monitor. defaultThreshold applies to users without their own setting.
func NewLowBalanceMonitor(
	settingsRepo portsrepo.SettingsRepository,
	emailer portssvc.Emailer,
	inApp portssvc.InAppNotifier,
	defaultThreshold decimal.Decimal,
) portssvc.LowBalanceMonitorSvc {
	return &lowBalanceMonitor{
		settingsRepo:     settingsRepo,
		emailer:          emailer,
		inApp:            inApp,
		defaultThreshold: defaultThreshold,
	}
}

var _ portssvc.LowBalanceMonitorSvc = (*lowBalanceMonitor)(nil)

func (s *lowBalanceMonitor) AfterDebit(ctx context.Context, userID string, newBalance decimal.Decimal) {
	threshold := s.Threshold(ctx, userID)
	if !newBalance.LessThan(threshold) {
		return
	}

	alert := domain.LowBalanceAlert{UserID: userID, Balance: newBalance, Threshold: threshold}
	s.LogInfo(ctx, "Balance below threshold",
		slog.String("user_id", userID),
		slog.String("balance", newBalance.String()),
		slog.String("threshold", threshold.String()))

	if s.emailer != nil {
		if err := s.emailer.SendLowBalanceEmail(ctx, alert); err != nil {
			s.LogError(ctx, fmt.Errorf("%w: %v", apperrors.ErrNotificationDelivery, err), "Low balance email not sent",
				slog.String("user_id", userID))
		}
	}
	if s.inApp != nil {
		if err := s.inApp.CreateLowBalanceNotification(ctx, alert); err != nil {
			s.LogError(ctx, fmt.Errorf("%w: %v", apperrors.ErrNotificationDelivery, err), "Low balance in-app notification not created",
				slog.String("user_id", userID))
		}
	}
}

func (s *lowBalanceMonitor) Threshold(ctx context.Context, userID string) decimal.Decimal {
	raw, err := s.settingsRepo.GetUserSetting(ctx, userID, domain.SettingLowBalanceThreshold)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to read low balance threshold, using default", slog.String("user_id", userID))
		}
		return s.defaultThreshold
	}

	threshold, err := decimal.NewFromString(raw)
	if err != nil || threshold.IsNegative() {
		s.LogWarn(ctx, "Stored low balance threshold is invalid, using default",
			slog.String("user_id", userID),
			slog.String("value", raw))
		return s.defaultThreshold
	}
	return threshold
}

func (s *lowBalanceMonitor) SetThreshold(ctx context.Context, userID string, threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return apperrors.NewValidationError("threshold must not be negative")
	}
	if err := s.settingsRepo.SaveUserSetting(ctx, userID, domain.SettingLowBalanceThreshold, threshold.String()); err != nil {
		s.LogError(ctx, err, "Failed to save low balance threshold", slog.String("user_id", userID))
		return err
	}
	return nil
}
