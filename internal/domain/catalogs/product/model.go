// Package product provides the phone product catalog. Products are reference
// data: the allocation core only reads them for price and name enrichment.
package product

import (
	"context"
	"strings"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/types"
)

// Product is a phone model sold by the business.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category,omitempty"`
	Brand    string `db:"brand" json:"brand,omitempty"`

	// BasePrice is the default selling price in minor units; individual
	// IMEI records may override it at registration.
	BasePrice types.MinorUnits `db:"base_price" json:"basePrice"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate implements basic catalog validation.
func (p *Product) Validate(ctx context.Context) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if p.BasePrice < 0 {
		return apperror.NewValidation("base price cannot be negative").WithDetail("field", "basePrice")
	}
	return nil
}
