package product

import (
	"context"

	"telstock/internal/core/id"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, onlyActive bool) ([]*Product, error)
}
