// Package tx provides transaction management abstractions.
// The interfaces here decouple domain logic from the storage
// implementation; the concrete manager lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested transaction
// support.
//
// Domain services depend on this interface, not concrete implementations.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
// Use for queries that don't modify data.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdvisoryLocker serializes administrative bulk operations per key.
// The lock is scoped to the current transaction and released on
// commit or rollback. Must be called inside RunInTransaction.
type AdvisoryLocker interface {
	AdvisoryXactLock(ctx context.Context, key string) error
}
