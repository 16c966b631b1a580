package product

import (
	"context"

	"telstock/internal/core/id"
	"telstock/pkg/logger"
)

// Service provides CRUD for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	p.IsActive = true
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// Update validates and stores product changes.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.repo.Delete(ctx, productID)
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List returns products, optionally only active ones.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]*Product, error) {
	return s.repo.List(ctx, onlyActive)
}
