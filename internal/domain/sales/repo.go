package sales

import (
	"context"
	"time"

	"telstock/internal/core/id"
)

// Filter narrows sale list queries.
type Filter struct {
	SoldByID *id.ID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Repository defines the interface for Sale persistence.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	List(ctx context.Context, f Filter) ([]*Sale, error)
	Count(ctx context.Context, f Filter) (int64, error)

	// ListByBeneficiary returns sales where the user earns any commission
	// slot within the period.
	ListByBeneficiary(ctx context.Context, userID id.ID, from, to time.Time) ([]*Sale, error)
}
