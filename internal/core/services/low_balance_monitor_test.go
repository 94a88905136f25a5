package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/sms_wallet_app/internal/apperrors"
	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	"github.com/SscSPs/sms_wallet_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowBalanceMonitor_Threshold(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  string
		readErr error
		want    string
	}{
		{"unset uses default", "", apperrors.ErrNotFound, "500"},
		{"store error uses default", "", assert.AnError, "500"},
		{"per user value", "120.5", nil, "120.5"},
		{"garbage uses default", "lots", nil, "500"},
		{"negative uses default", "-1", nil, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := new(MockSettingsRepository)
			settings.On("GetUserSetting", ctx, "u1", domain.SettingLowBalanceThreshold).Return(tt.stored, tt.readErr).Once()
			monitor := services.NewLowBalanceMonitor(settings, nil, nil, dec("500"))

			assert.True(t, dec(tt.want).Equal(monitor.Threshold(ctx, "u1")))
			settings.AssertExpectations(t)
		})
	}
}

func TestLowBalanceMonitor_AfterDebit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		newBalance string
		wantAlerts int
	}{
		{"above threshold", "150", 0},
		{"at threshold", "100", 0},
		{"below threshold", "99.99", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := new(MockSettingsRepository)
			settings.On("GetUserSetting", ctx, "u1", domain.SettingLowBalanceThreshold).Return("100", nil).Once()
			sink := &recordingSink{}
			monitor := services.NewLowBalanceMonitor(settings, sink, sink, dec("500"))

			monitor.AfterDebit(ctx, "u1", dec(tt.newBalance))

			assert.Len(t, sink.emails, tt.wantAlerts)
			assert.Len(t, sink.inApp, tt.wantAlerts)
			if tt.wantAlerts > 0 {
				assert.True(t, dec("100").Equal(sink.emails[0].Threshold))
				assert.True(t, dec(tt.newBalance).Equal(sink.emails[0].Balance))
			}
		})
	}
}

func TestLowBalanceMonitor_DeliveryFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	settings := new(MockSettingsRepository)
	settings.On("GetUserSetting", ctx, "u1", domain.SettingLowBalanceThreshold).Return("", apperrors.ErrNotFound).Once()
	sink := &recordingSink{err: assert.AnError}
	monitor := services.NewLowBalanceMonitor(settings, sink, sink, dec("500"))

	assert.NotPanics(t, func() { monitor.AfterDebit(ctx, "u1", dec("1")) })
	assert.Len(t, sink.emails, 1, "in-app still attempted after email failure")
	assert.Len(t, sink.inApp, 1)
}

func TestLowBalanceMonitor_SetThreshold(t *testing.T) {
	ctx := context.Background()
	settings := new(MockSettingsRepository)
	settings.On("SaveUserSetting", ctx, "u1", domain.SettingLowBalanceThreshold, "250").Return(nil).Once()
	monitor := services.NewLowBalanceMonitor(settings, nil, nil, dec("500"))

	require.NoError(t, monitor.SetThreshold(ctx, "u1", dec("250")))
	assert.ErrorIs(t, monitor.SetThreshold(ctx, "u1", dec("-1")), apperrors.ErrValidation)
	settings.AssertExpectations(t)
}
