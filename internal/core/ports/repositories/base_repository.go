package repositories

import (
	"context"
)

// Tx is an open atomic unit. Store methods that accept a Tx run inside it, and
// nothing they write is visible to others until the unit is committed.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new atomic unit
	Begin(ctx context.Context) (Tx, error)

	// Commit commits an atomic unit
	Commit(ctx context.Context, tx Tx) error

	// Rollback rolls back an atomic unit. Rolling back a finished unit is a no-op.
	Rollback(ctx context.Context, tx Tx) error
}
