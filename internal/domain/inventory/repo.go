package inventory

import (
	"context"

	"telstock/internal/core/id"
)

// Filter narrows IMEI list queries.
type Filter struct {
	Status    *Status
	OwnerID   *id.ID
	ProductID *id.ID
	Search    string // substring match on the IMEI number
	Limit     int
	Offset    int
}

// Repository defines the interface for IMEI persistence.
type Repository interface {
	Create(ctx context.Context, m *IMEI) error

	// CreateBatch inserts many records in one round trip (COPY).
	CreateBatch(ctx context.Context, items []*IMEI) (int64, error)

	GetByNumber(ctx context.Context, number string) (*IMEI, error)
	GetByID(ctx context.Context, imeiID id.ID) (*IMEI, error)

	// Update writes the mutable state (status, owner, timestamps) guarded
	// by the version column: the row is matched on id AND version, and
	// version is incremented. A missed match returns
	// apperror CONCURRENT_MODIFICATION.
	Update(ctx context.Context, m *IMEI) error

	List(ctx context.Context, f Filter) ([]*IMEI, error)
	Count(ctx context.Context, f Filter) (int64, error)

	// ListOwnedBy returns units held by ownerID excluding the given statuses.
	ListOwnedBy(ctx context.Context, ownerID id.ID, exclude []Status) ([]*IMEI, error)

	// ListUnallocated returns the pool: no owner, status in_stock or allocated.
	ListUnallocated(ctx context.Context) ([]*IMEI, error)
}
