package allocation

import (
	"context"

	"telstock/internal/core/id"
)

// Filter narrows ledger history queries.
type Filter struct {
	Imei      string
	UserID    *id.ID // matches either direction
	EventType *EventType
	Limit     int
	Offset    int
}

// Repository defines the interface for ledger persistence. The ledger is
// append-only: there are no update or delete operations.
type Repository interface {
	Create(ctx context.Context, e *LedgerEntry) error

	// ListByImei returns all entries for one unit, ascending by creation.
	ListByImei(ctx context.Context, imei string) ([]*LedgerEntry, error)

	List(ctx context.Context, f Filter) ([]*LedgerEntry, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

// ReferenceGenerator produces sequential human-facing numbers per prefix,
// e.g. ALC-2026-00042.
type ReferenceGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}
