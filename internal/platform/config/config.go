package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const (
	defaultPort                 = "8080"
	defaultJWTSecret            = "a-very-secret-key-should-be-longer-and-random"
	defaultCurrency             = "NGN"
	defaultLowBalanceThreshold  = "500"
	defaultNotifyQueueSize      = 256
	defaultNotifyWorkers        = 4
	defaultWebhookSettleTimeout = 30 * time.Second
	defaultRateLimit            = "100-M"
	defaultMigrationsPath       = "file://migrations"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StorageDriver string
	JWTSecret     string

	// Wallet
	WalletCurrency             string
	LowBalanceDefaultThreshold decimal.Decimal

	// Payment gateway
	PaymentWebhookSecret string
	WebhookSettleTimeout time.Duration

	// Notification dispatch
	NotifyQueueSize int
	NotifyWorkers   int

	// HTTP
	RateLimit          string // ulule limiter format, e.g. "100-M"
	CORSAllowedOrigins []string
	MigrationsPath     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("WALLET_CURRENCY", defaultCurrency)
	v.SetDefault("LOW_BALANCE_DEFAULT_THRESHOLD", defaultLowBalanceThreshold)
	v.SetDefault("PAYMENT_WEBHOOK_SECRET", "")
	v.SetDefault("WEBHOOK_SETTLE_TIMEOUT", defaultWebhookSettleTimeout.String())
	v.SetDefault("NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize)
	v.SetDefault("NOTIFY_WORKERS", defaultNotifyWorkers)
	v.SetDefault("RATE_LIMIT", defaultRateLimit)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	// Environment variables override defaults and .env values.
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = defaultPort
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER")))
	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		log.Printf("Warning: Invalid value for STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}
	if cfg.StorageDriver == StorageDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.WalletCurrency = strings.ToUpper(v.GetString("WALLET_CURRENCY"))
	if cfg.WalletCurrency == "" {
		cfg.WalletCurrency = defaultCurrency
	}

	thresholdStr := v.GetString("LOW_BALANCE_DEFAULT_THRESHOLD")
	threshold, err := decimal.NewFromString(thresholdStr)
	if err != nil || threshold.IsNegative() {
		threshold = decimal.RequireFromString(defaultLowBalanceThreshold)
		log.Printf("Warning: Invalid value for LOW_BALANCE_DEFAULT_THRESHOLD ('%s'). Defaulting to %s.\n", thresholdStr, threshold.String())
	}
	cfg.LowBalanceDefaultThreshold = threshold

	cfg.PaymentWebhookSecret = v.GetString("PAYMENT_WEBHOOK_SECRET")
	if cfg.PaymentWebhookSecret == "" {
		log.Println("Warning: PAYMENT_WEBHOOK_SECRET not set. Payment webhooks will be rejected.")
	}

	timeoutStr := v.GetString("WEBHOOK_SETTLE_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = defaultWebhookSettleTimeout
		log.Printf("Warning: Invalid value for WEBHOOK_SETTLE_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout.String())
	}
	cfg.WebhookSettleTimeout = timeout

	cfg.NotifyQueueSize = v.GetInt("NOTIFY_QUEUE_SIZE")
	if cfg.NotifyQueueSize <= 0 {
		log.Printf("Warning: Invalid value for NOTIFY_QUEUE_SIZE (%d). Defaulting to %d.\n", cfg.NotifyQueueSize, defaultNotifyQueueSize)
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}
	cfg.NotifyWorkers = v.GetInt("NOTIFY_WORKERS")
	if cfg.NotifyWorkers <= 0 {
		log.Printf("Warning: Invalid value for NOTIFY_WORKERS (%d). Defaulting to %d.\n", cfg.NotifyWorkers, defaultNotifyWorkers)
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = defaultRateLimit
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = defaultMigrationsPath
	}

	return cfg
}
