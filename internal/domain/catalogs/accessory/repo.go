package accessory

import (
	"context"

	"telstock/internal/core/id"
)

// Repository defines the interface for Accessory catalog persistence.
type Repository interface {
	Create(ctx context.Context, a *Accessory) error
	Update(ctx context.Context, a *Accessory) error
	GetByID(ctx context.Context, accessoryID id.ID) (*Accessory, error)
	List(ctx context.Context, onlyActive bool) ([]*Accessory, error)
}

// BalanceRepository manages per-holder quantity balances.
type BalanceRepository interface {
	// GetForUpdate reads a balance row with a row lock; returns 0 for a
	// missing row. holderID nil addresses the unallocated pool.
	GetForUpdate(ctx context.Context, accessoryID id.ID, holderID *id.ID) (int64, error)

	// Adjust adds delta to the balance, creating the row when absent.
	Adjust(ctx context.Context, accessoryID id.ID, holderID *id.ID, delta int64) error

	// ListByHolder returns all balances of one holder (nil for the pool).
	ListByHolder(ctx context.Context, holderID *id.ID) ([]*Balance, error)
}
