// Package tx declares the transaction boundary the domain layer runs against.
// Services call Manager without knowing about pgx; the Postgres
// implementation lives in infrastructure/storage/postgres and threads the
// open transaction through the context.
package tx

import "context"

// Manager runs a function inside a database transaction.
type Manager interface {
	// RunInTransaction begins a transaction, runs fn with it attached to the
	// context, and commits. Any error from fn rolls the transaction back and
	// is returned unchanged. When the context already carries a transaction,
	// fn joins it instead of opening a new one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds a read-only variant, used where several reads must
// observe one consistent snapshot (ledger reconciliation).
type ReadOnlyManager interface {
	Manager

	// ReadOnly runs fn in a transaction opened with read-only access mode.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
