// Package tx defines the transaction management contract.
// Implementations live in the storage layer; domain services depend only on
// this interface.
package tx

import "context"

// Manager runs functions inside database transactions.
//
// RunInTransaction begins a transaction, stores it in the returned context so
// repositories can pick it up, and commits when fn returns nil or rolls back
// when fn returns an error. Nested calls reuse the outer transaction via
// savepoints.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopManager runs fn directly without a transaction. Used in unit tests.
type NoopManager struct{}

// RunInTransaction implements Manager.
func (NoopManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
