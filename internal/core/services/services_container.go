package services

import (
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sms_wallet_app/internal/core/ports/services"
	"github.com/SscSPs/sms_wallet_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifications portssvc.NotificationSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The mutator is the only writer of balances; everything else goes through it
	container.Mutator = NewBalanceMutator(
		repos.TxManager,
		repos.AccountRepo,
		repos.LedgerRepo,
		WithNotifier(notifications),
	)

	container.Monitor = NewLowBalanceMonitor(
		repos.SettingsRepo,
		notifications,
		notifications,
		cfg.LowBalanceDefaultThreshold,
	)

	container.Settlement = NewSettlementService(
		container.Mutator,
		repos.LedgerRepo,
		repos.IntentRepo,
		WithSettleTimeout(cfg.WebhookSettleTimeout),
	)

	container.Wallet = NewWalletService(
		repos.AccountRepo,
		repos.LedgerRepo,
		container.Mutator,
		cfg.WalletCurrency,
		WithLowBalanceMonitor(container.Monitor),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.BalanceMutatorSvc    = (*balanceMutator)(nil)
	_ portssvc.PaymentSettlementSvc = (*settlementService)(nil)
	_ portssvc.LowBalanceMonitorSvc = (*lowBalanceMonitor)(nil)
	_ portssvc.WalletSvcFacade      = (*walletService)(nil)
)
