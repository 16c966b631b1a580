package accessory

import (
	"context"

	"telstock/internal/core/id"
)

// Service provides CRUD for the accessory catalog and balance reads.
// Quantity transfers between holders live in the allocation engine, which
// writes the shared ledger.
type Service struct {
	repo     Repository
	balances BalanceRepository
}

// NewService creates a new Accessory service.
func NewService(repo Repository, balances BalanceRepository) *Service {
	return &Service{repo: repo, balances: balances}
}

// Create validates and stores a new accessory.
func (s *Service) Create(ctx context.Context, a *Accessory) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(a.ID) {
		a.ID = id.New()
	}
	a.IsActive = true
	return s.repo.Create(ctx, a)
}

// Get returns an accessory by id.
func (s *Service) Get(ctx context.Context, accessoryID id.ID) (*Accessory, error) {
	return s.repo.GetByID(ctx, accessoryID)
}

// List returns accessories, optionally only active ones.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]*Accessory, error) {
	return s.repo.List(ctx, onlyActive)
}

// StockOf returns the accessory balances held by a user (nil for the
// unallocated pool).
func (s *Service) StockOf(ctx context.Context, holderID *id.ID) ([]*Balance, error) {
	return s.balances.ListByHolder(ctx, holderID)
}
