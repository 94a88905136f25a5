package pgsql

import (
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    newPgxTxManager(dbPool),
		AccountRepo:  newPgxAccountRepository(dbPool),
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		IntentRepo:   newPgxPaymentIntentRepository(dbPool),
		SettingsRepo: newPgxSettingsRepository(dbPool),
	}
}
