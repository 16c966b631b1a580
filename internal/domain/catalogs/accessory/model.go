// Package accessory provides the non-serialized accessory catalog and the
// per-holder quantity balances. Accessories (cases, chargers, earphones) are
// not IMEI-tracked; custody is a quantity register instead of a unit record.
package accessory

import (
	"context"
	"strings"
	"time"

	"telstock/internal/core/apperror"
	"telstock/internal/core/id"
	"telstock/internal/core/types"
)

// Accessory is a non-serialized catalog item.
type Accessory struct {
	ID    id.ID            `db:"id" json:"id"`
	Name  string           `db:"name" json:"name"`
	Price types.MinorUnits `db:"price" json:"price"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate implements basic catalog validation.
func (a *Accessory) Validate(ctx context.Context) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return apperror.NewValidation("accessory name is required").WithDetail("field", "name")
	}
	if a.Price < 0 {
		return apperror.NewValidation("price cannot be negative").WithDetail("field", "price")
	}
	return nil
}

// Balance is the quantity of one accessory held by one user. A nil HolderID
// row represents the unallocated pool at the top of the hierarchy.
type Balance struct {
	AccessoryID id.ID     `db:"accessory_id" json:"accessoryId"`
	HolderID    *id.ID    `db:"holder_id" json:"holderId,omitempty"`
	Quantity    int64     `db:"quantity" json:"quantity"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
