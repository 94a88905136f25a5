// Package memory is an in-process implementation of every repository port.
// It gives the same guarantees the ledger relies on from Postgres: row locks
// held until commit, and a unique transaction id whose second insert blocks
// until the first unit ends and then fails with ErrConflict.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SscSPs/sms_wallet_app/internal/core/domain"
	portsrepo "github.com/SscSPs/sms_wallet_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var errTxClosed = errors.New("memory: transaction already closed")

type Store struct {
	mu sync.RWMutex

	accounts map[string]domain.Account
	ledger   map[string]domain.Transaction
	intents  map[string]domain.PaymentIntent
	settings map[string]map[string]string

	// rowLocks are one-slot semaphores keyed by "account:<id>" or "txn:<id>".
	rowLocks map[string]chan struct{}
	// reserved maps a transaction id to the open unit that inserted it.
	reserved map[string]*memTx
}

func New() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		ledger:   make(map[string]domain.Transaction),
		intents:  make(map[string]domain.PaymentIntent),
		settings: make(map[string]map[string]string),
		rowLocks: make(map[string]chan struct{}),
		reserved: make(map[string]*memTx),
	}
}

// NewRepositoryProvider exposes one store through every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    store,
		AccountRepo:  store,
		LedgerRepo:   store,
		IntentRepo:   store,
		SettingsRepo: store,
	}
}

var (
	_ portsrepo.TransactionManager      = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
	_ portsrepo.PaymentIntentRepository = (*Store)(nil)
	_ portsrepo.SettingsRepository      = (*Store)(nil)
)

type stagedBalance struct {
	balance decimal.Decimal
	at      time.Time
}

// memTx stages writes until commit. A unit is used by one goroutine at a time.
type memTx struct {
	store  *Store
	done   chan struct{}
	closed bool

	held     map[string]chan struct{}
	balances map[string]stagedBalance
	inserts  map[string]domain.Transaction
	updates  map[string]domain.Transaction
}

func (s *Store) Begin(_ context.Context) (portsrepo.Tx, error) {
	return &memTx{
		store:    s,
		done:     make(chan struct{}),
		held:     make(map[string]chan struct{}),
		balances: make(map[string]stagedBalance),
		inserts:  make(map[string]domain.Transaction),
		updates:  make(map[string]domain.Transaction),
	}, nil
}

func (s *Store) Commit(ctx context.Context, tx portsrepo.Tx) error {
	return tx.Commit(ctx)
}

func (s *Store) Rollback(ctx context.Context, tx portsrepo.Tx) error {
	return tx.Rollback(ctx)
}

func (t *memTx) Commit(_ context.Context) error {
	if t.closed {
		return errTxClosed
	}
	s := t.store
	s.mu.Lock()
	for userID, b := range t.balances {
		acc := s.accounts[userID]
		acc.Balance = b.balance
		acc.LastUpdatedAt = b.at
		s.accounts[userID] = acc
	}
	for id, txn := range t.inserts {
		s.ledger[id] = txn
		delete(s.reserved, id)
	}
	for id, txn := range t.updates {
		s.ledger[id] = txn
	}
	s.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.closed {
		return nil
	}
	s := t.store
	s.mu.Lock()
	for id := range t.inserts {
		delete(s.reserved, id)
	}
	s.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) finish() {
	t.closed = true
	close(t.done)
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

// lock acquires the row lock for key, waiting for the holder to finish. Re-entrant per unit.
func (t *memTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	s := t.store
	s.mu.Lock()
	ch, ok := s.rowLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[key] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) txFrom(tx portsrepo.Tx) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok || mt.store != s {
		return nil, errors.New("memory: transaction does not belong to this store")
	}
	if mt.closed {
		return nil, errTxClosed
	}
	return mt, nil
}
