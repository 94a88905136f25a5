package domain

import (
	"github.com/shopspring/decimal"
)

// BalanceChange is sent to the notifier after a mutation commits.
type BalanceChange struct {
	UserID        string
	TransactionID string
	Direction     Direction
	Amount        decimal.Decimal
	NewBalance    decimal.Decimal
	Service       string
}

// LowBalanceAlert is raised by the low-balance monitor.
type LowBalanceAlert struct {
	UserID    string
	Balance   decimal.Decimal
	Threshold decimal.Decimal
}

// SettingLowBalanceThreshold is the per-user settings key holding the alert threshold.
const SettingLowBalanceThreshold = "low_balance_threshold"
