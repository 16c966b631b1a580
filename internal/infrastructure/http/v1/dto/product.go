package dto

import (
	"telstock/internal/core/types"
	"telstock/internal/domain/catalogs/product"
)

// ProductRequest creates or updates a product.
type ProductRequest struct {
	Name      string  `json:"name" binding:"required"`
	Category  string  `json:"category"`
	Brand     string  `json:"brand"`
	BasePrice float64 `json:"basePrice" binding:"min=0"`
	IsActive  *bool   `json:"isActive"`
}

// ToProduct converts the request into a catalog item.
func (r *ProductRequest) ToProduct() *product.Product {
	p := &product.Product{
		Name:      r.Name,
		Category:  r.Category,
		Brand:     r.Brand,
		BasePrice: types.FromMoney(types.NewMoney(r.BasePrice)),
		IsActive:  true,
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}
