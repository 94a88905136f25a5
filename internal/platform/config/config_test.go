package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "WALLET_CURRENCY", "LOW_BALANCE_DEFAULT_THRESHOLD",
		"WEBHOOK_SETTLE_TIMEOUT", "NOTIFY_QUEUE_SIZE", "NOTIFY_WORKERS", "RATE_LIMIT",
		"CORS_ALLOWED_ORIGINS", "MIGRATIONS_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "NGN", cfg.WalletCurrency)
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.LowBalanceDefaultThreshold))
	assert.Equal(t, 30*time.Second, cfg.WebhookSettleTimeout)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("WALLET_CURRENCY", "usd")
	t.Setenv("LOW_BALANCE_DEFAULT_THRESHOLD", "12.50")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec")
	t.Setenv("WEBHOOK_SETTLE_TIMEOUT", "5s")
	t.Setenv("NOTIFY_QUEUE_SIZE", "10")
	t.Setenv("NOTIFY_WORKERS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "USD", cfg.WalletCurrency)
	assert.Equal(t, "12.5", cfg.LowBalanceDefaultThreshold.String())
	assert.Equal(t, "whsec", cfg.PaymentWebhookSecret)
	assert.Equal(t, 5*time.Second, cfg.WebhookSettleTimeout)
	assert.Equal(t, 10, cfg.NotifyQueueSize)
	assert.Equal(t, 2, cfg.NotifyWorkers)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("LOW_BALANCE_DEFAULT_THRESHOLD", "-3")
	t.Setenv("WEBHOOK_SETTLE_TIMEOUT", "soon")
	t.Setenv("NOTIFY_WORKERS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "500", cfg.LowBalanceDefaultThreshold.String())
	assert.Equal(t, 30*time.Second, cfg.WebhookSettleTimeout)
	assert.Equal(t, 4, cfg.NotifyWorkers)
}
